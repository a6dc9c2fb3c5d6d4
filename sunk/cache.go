package sunk

import (
	"io"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// Exists reports whether a cached stage output is already present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteSunkRecords writes asm_sunks.tsv to w.
func WriteSunkRecords(w io.Writer, rows []SunkRecord) error {
	return writeRows(w, func(tw *tsv.Writer) error {
		tw.WriteString("ctg")
		tw.WriteString("cpos")
		tw.WriteString("kmer")
		tw.WriteString("group")
		if err := tw.EndLine(); err != nil {
			return err
		}
		for _, r := range rows {
			tw.WriteString(r.Ctg)
			tw.WriteUint32(r.CPos)
			tw.WriteString(r.Kmer)
			tw.WriteUint32(r.Group)
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadSunkRecords reads back asm_sunks.tsv from r.
func LoadSunkRecords(r io.Reader) ([]SunkRecord, error) {
	var rows []SunkRecord
	err := readRows(r, func(tr *tsv.Reader) error {
		for {
			var row SunkRecord
			if err := tr.Read(&row); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			rows = append(rows, row)
		}
	})
	return rows, err
}

// WriteReadSunkRecords writes read_sunks.tsv / read_sunks_good.tsv, which
// share a column layout with ReadSunkRecord.
func WriteReadSunkRecords(w io.Writer, rows []ReadSunkRecord) error {
	return writeRows(w, func(tw *tsv.Writer) error {
		tw.WriteString("read")
		tw.WriteString("rpos")
		tw.WriteString("ctg")
		tw.WriteString("cpos")
		tw.WriteString("group")
		if err := tw.EndLine(); err != nil {
			return err
		}
		for _, r := range rows {
			tw.WriteString(r.Read)
			tw.WriteUint32(r.RPos)
			tw.WriteString(r.Ctg)
			tw.WriteUint32(r.CPos)
			tw.WriteUint32(r.Group)
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadReadSunkRecords reads back read_sunks.tsv / read_sunks_good.tsv.
func LoadReadSunkRecords(r io.Reader) ([]ReadSunkRecord, error) {
	var rows []ReadSunkRecord
	err := readRows(r, func(tr *tsv.Reader) error {
		for {
			var row ReadSunkRecord
			if err := tr.Read(&row); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			rows = append(rows, row)
		}
	})
	return rows, err
}

// WriteReadCtgAssignments writes read_ctg_mapping.tsv.
func WriteReadCtgAssignments(w io.Writer, rows []ReadCtgAssignment) error {
	return writeRows(w, func(tw *tsv.Writer) error {
		tw.WriteString("read")
		tw.WriteString("ctg")
		tw.WriteString("sunks_within_bandwidth")
		tw.WriteString("ort")
		if err := tw.EndLine(); err != nil {
			return err
		}
		for _, r := range rows {
			tw.WriteString(r.Read)
			tw.WriteString(r.Ctg)
			tw.WriteInt64(int64(r.SunksWithinBandwidth))
			tw.WriteString(r.Ort.String())
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadReadCtgAssignments reads back read_ctg_mapping.tsv.
func LoadReadCtgAssignments(r io.Reader) ([]ReadCtgAssignment, error) {
	var rows []ReadCtgAssignment
	err := readRows(r, func(tr *tsv.Reader) error {
		for {
			var row rawReadCtgAssignment
			if err := tr.Read(&row); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			ort := Reverse
			if row.Ort == "+" {
				ort = Forward
			}
			rows = append(rows, ReadCtgAssignment{
				Read:                 row.Read,
				Ctg:                  row.Ctg,
				SunksWithinBandwidth: row.SunksWithinBandwidth,
				Ort:                  ort,
			})
		}
	})
	return rows, err
}

// rawReadCtgAssignment mirrors ReadCtgAssignment with a string Ort column,
// since Orientation doesn't implement the tsv reflection scalar types.
type rawReadCtgAssignment struct {
	Read                 string `tsv:"read"`
	Ctg                  string `tsv:"ctg"`
	SunksWithinBandwidth int    `tsv:"sunks_within_bandwidth"`
	Ort                  string `tsv:"ort"`
}

// WriteBadSunks writes read_sunks_bad.tsv.
func WriteBadSunks(w io.Writer, rows []BadSunk) error {
	return writeRows(w, func(tw *tsv.Writer) error {
		tw.WriteString("id")
		tw.WriteString("count")
		if err := tw.EndLine(); err != nil {
			return err
		}
		for _, r := range rows {
			tw.WriteString(r.ID)
			tw.WriteInt64(int64(r.Count))
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadBadSunks reads back read_sunks_bad.tsv.
func LoadBadSunks(r io.Reader) ([]BadSunk, error) {
	var rows []BadSunk
	err := readRows(r, func(tr *tsv.Reader) error {
		for {
			var row BadSunk
			if err := tr.Read(&row); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			rows = append(rows, row)
		}
	})
	return rows, err
}

// WriteContigSunkMemberships writes {ctg}_sunks.tsv.
func WriteContigSunkMemberships(w io.Writer, rows []ContigSunkMembership) error {
	return writeRows(w, func(tw *tsv.Writer) error {
		tw.WriteString("read")
		tw.WriteString("id")
		if err := tw.EndLine(); err != nil {
			return err
		}
		for _, r := range rows {
			tw.WriteString(r.Read)
			tw.WriteUint32(r.ID)
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteBedIntervals writes {ctg}.bed. BED files carry no header row.
func WriteBedIntervals(w io.Writer, rows []BedInterval) error {
	return writeRows(w, func(tw *tsv.Writer) error {
		for _, r := range rows {
			tw.WriteString(r.Ctg)
			tw.WriteUint32(r.Start)
			tw.WriteUint32(r.End)
			tw.WriteInt64(int64(r.Sunks))
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRows(w io.Writer, fn func(*tsv.Writer) error) error {
	tw := tsv.NewWriter(w)
	if err := fn(tw); err != nil {
		return errors.E(errors.IO, "sunk: writing rows", err)
	}
	if err := tw.Flush(); err != nil {
		return errors.E(errors.IO, "sunk: flushing rows", err)
	}
	return nil
}

func readRows(r io.Reader, fn func(*tsv.Reader) error) error {
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	if err := fn(tr); err != nil {
		return errors.E(errors.IO, "sunk: reading rows", err)
	}
	return nil
}
