package sunk

import "github.com/grailbio/base/errors"

// Opts configures every stage of the pipeline.
type Opts struct {
	// KmerLength is the length of the k-mers used to find SUNKs. Must be in
	// (0, 32]; longer k-mers don't fit in a Kmer.
	KmerLength int

	// Bandwidth is the half-width, in bases, of the band used by
	// AssignReadsToContigs: a SUNK counts as in band when its
	// orientation-adjusted position (CPos-RPos forward, CPos+RPos reverse)
	// lies strictly less than Bandwidth from the median of those positions
	// over the read's SUNKs on that contig. SUNKs outside the band are not
	// counted; reads are not split.
	Bandwidth int

	// GoodSunkThreshold is the in-band SUNK count a read must exceed on its
	// best contig for the assignment to be kept: reads with a count at or
	// below it are dropped.
	GoodSunkThreshold int

	// MinReadLength discards reads at or below this many bases when
	// building contig graphs (BuildContigGraphs), to avoid spurious
	// single-SUNK matches. Reads shorter than this are still mapped and
	// assigned in stages C and D; it is only a stage F pre-filter.
	MinReadLength int

	// OrientationTolerance bounds how far the ratio of read-axis to
	// contig-axis displacement between two SUNKs may stray from 1 and still
	// be considered "in band" in BuildContigGraphs. A ratio r is in band
	// when |r-1| < OrientationTolerance.
	OrientationTolerance float64

	// BadSunkRMSFactor scales the standard-deviation term of the coverage
	// cutoff used by FilterBadSunks: a SUNK is bad if its read coverage
	// exceeds mode + BadSunkRMSFactor*sqrt(mode).
	BadSunkRMSFactor float64
}

// DefaultOpts holds the pipeline defaults.
var DefaultOpts = Opts{
	KmerLength:           20,
	Bandwidth:            2500,
	GoodSunkThreshold:    1,
	MinReadLength:        10000,
	OrientationTolerance: 0.1,
	BadSunkRMSFactor:     4,
}

// Validate returns an error of kind errors.Invalid if o is not usable.
func (o Opts) Validate() error {
	if o.KmerLength <= 0 || o.KmerLength > 32 {
		return errors.E(errors.Invalid, "sunk: KmerLength must be in (0, 32]")
	}
	if o.Bandwidth <= 0 {
		return errors.E(errors.Invalid, "sunk: Bandwidth must be positive")
	}
	if o.GoodSunkThreshold <= 0 {
		return errors.E(errors.Invalid, "sunk: GoodSunkThreshold must be positive")
	}
	if o.MinReadLength < 0 {
		return errors.E(errors.Invalid, "sunk: MinReadLength must be non-negative")
	}
	if o.OrientationTolerance <= 0 || o.OrientationTolerance >= 1 {
		return errors.E(errors.Invalid, "sunk: OrientationTolerance must be in (0, 1)")
	}
	if o.BadSunkRMSFactor <= 0 {
		return errors.E(errors.Invalid, "sunk: BadSunkRMSFactor must be positive")
	}
	return nil
}
