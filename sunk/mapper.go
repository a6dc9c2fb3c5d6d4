package sunk

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/koisland/gavisunk/encoding/fasta"
)

// sunkKey identifies a read-SUNK occurrence's dedup bucket.
type sunkKey struct {
	ctg   string
	group uint32
}

// MapSunksToReads finds every occurrence (forward or reverse-complement) of
// a SUNK in the read sequences listed by h.SeqNames(), fetched through h.
//
// Since a SUNK's defining property is a global reference count of exactly
// one, the positional index built here (sunkIndex) holds at most one
// position per kmer; a list-valued index, as if multiple positions were
// possible, would be dead generality.
func MapSunksToReads(h fasta.Handle, sunks []SunkRecord, opts Opts) ([]ReadSunkRecord, error) {
	if len(sunks) == 0 {
		return nil, errors.E(errors.Invalid, "sunk: cannot map reads against an empty SUNK set")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	index := newSunkIndex(sunks)

	readNames := h.SeqNames()
	lengths := h.Lengths()
	perRead := make([][]ReadSunkRecord, len(readNames))

	log.Printf("sunk: mapping %d SUNKs onto %d reads (k=%d)", len(sunks), len(readNames), opts.KmerLength)

	err := traverse.Each(len(readNames), func(i int) error {
		name := readNames[i]
		length := lengths[name]
		seq, err := h.Fetch(name, 1, length)
		if err != nil {
			return errors.E(errors.IO, fmt.Sprintf("sunk: fetching read %s", name), err)
		}
		perRead[i] = mapOneRead(name, seq, index, opts.KmerLength)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var rows []ReadSunkRecord
	for _, r := range perRead {
		rows = append(rows, r...)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Read != rows[j].Read {
			return rows[i].Read < rows[j].Read
		}
		return rows[i].RPos < rows[j].RPos
	})

	log.Printf("sunk: mapped %d read-SUNK occurrences", len(rows))
	return rows, nil
}

// mapOneRead scans seq for SUNK occurrences and reduces them to at most one
// row per (ctg, group): the one whose CPos is the group's anchor (minimum).
func mapOneRead(read string, seq []byte, index *sunkIndex, k int) []ReadSunkRecord {
	kz := newKmerizer(k)
	kz.Reset(seq)

	best := make(map[sunkKey]ReadSunkRecord)
	for kz.Scan() {
		win := kz.Get()
		s, ok := index.get(win.canonical())
		if !ok {
			continue
		}
		key := sunkKey{ctg: s.Ctg, group: s.Group}
		cand := ReadSunkRecord{Read: read, RPos: win.pos + 1, Ctg: s.Ctg, CPos: s.CPos, Group: s.Group}
		if cur, ok := best[key]; !ok || cand.CPos < cur.CPos {
			best[key] = cand
		}
	}

	rows := make([]ReadSunkRecord, 0, len(best))
	for _, r := range best {
		rows = append(rows, r)
	}
	return rows
}
