package sunk

// SunkRecord is one row of asm_sunks.tsv: a SUNK found in the assembly.
type SunkRecord struct {
	Ctg   string `tsv:"ctg"`
	CPos  uint32 `tsv:"cpos"`
	Kmer  string `tsv:"kmer"`
	Group uint32 `tsv:"group"`
}

// ReadSunkRecord is one row of read_sunks.tsv (and read_sunks_good.tsv,
// which shares its columns): a SUNK occurrence found in a read, joined
// against the contig it came from.
type ReadSunkRecord struct {
	Read  string `tsv:"read"`
	RPos  uint32 `tsv:"rpos"`
	Ctg   string `tsv:"ctg"`
	CPos  uint32 `tsv:"cpos"`
	Group uint32 `tsv:"group"`
}

// Orientation is a read's inferred strand relative to its assigned contig.
type Orientation byte

const (
	// Forward means the read and the contig ascend together on both the cpos
	// and rpos axes.
	Forward Orientation = '+'
	// Reverse means the read maps to the contig's opposite strand.
	Reverse Orientation = '-'
)

func (o Orientation) String() string { return string(rune(o)) }

// ReadCtgAssignment is one row of read_ctg_mapping.tsv: the contig and
// orientation chosen for a read, and how many SUNKs supported it.
type ReadCtgAssignment struct {
	Read                 string      `tsv:"read"`
	Ctg                  string      `tsv:"ctg"`
	SunksWithinBandwidth int         `tsv:"sunks_within_bandwidth"`
	Ort                  Orientation `tsv:"ort"`
}

// BadSunk is one row of read_sunks_bad.tsv: a "ctg:group" id whose observed
// read coverage falls outside the expected range.
type BadSunk struct {
	ID    string `tsv:"id"`
	Count int    `tsv:"count"`
}

// ContigSunkMembership is one row of {ctg}_sunks.tsv: a read retained in the
// largest SUNK component it participates in, and which SUNK id it carried.
type ContigSunkMembership struct {
	Read string `tsv:"read"`
	ID   uint32 `tsv:"id"`
}

// BedInterval is one row of {ctg}.bed: a connected component of SUNK ids,
// of size > 2, in the contig graph built from the per-read components of
// one or more reads.
type BedInterval struct {
	Ctg   string
	Start uint32
	End   uint32
	Sunks int
}
