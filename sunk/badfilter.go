package sunk

import (
	"fmt"
	"math"
	"sort"

	"github.com/grailbio/base/log"
)

// sunkID renders the composite "{ctg}:{group}" identifier used for bad-SUNK
// bookkeeping, here and in BuildContigGraphs's bad-id pre-filter.
func sunkID(ctg string, group uint32) string {
	return fmt.Sprintf("%s:%d", ctg, group)
}

// FilterBadSunks detects SUNK groups whose observed read coverage deviates
// from the coverage mode beyond a Poisson-like tail cutoff. goodReadSunks
// should be the read-SUNK rows restricted to reads that survived
// AssignReadsToContigs (the "good" subset named in §4.E).
func FilterBadSunks(goodReadSunks []ReadSunkRecord, opts Opts) ([]BadSunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	coverage := make(map[string]int)
	for _, r := range goodReadSunks {
		coverage[sunkID(r.Ctg, r.Group)]++
	}

	// The mode is calibrated only from ids with enough support to be
	// meaningful; ids with coverage <= 2 are excluded from the calibration
	// set but are still subject to the final badness test below.
	var calibration []int
	for _, c := range coverage {
		if c > 2 {
			calibration = append(calibration, c)
		}
	}
	m := mode(calibration)
	tail := m + opts.BadSunkRMSFactor*math.Sqrt(m)

	ids := make([]string, 0, len(coverage))
	for id := range coverage {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var bad []BadSunk
	for _, id := range ids {
		c := coverage[id]
		if c < 2 || float64(c) > tail {
			bad = append(bad, BadSunk{ID: id, Count: c})
		}
	}

	log.Printf("sunk: coverage mode %.0f, tail cutoff %.1f, marked %d of %d SUNK groups bad", m, tail, len(bad), len(coverage))
	return bad, nil
}

// mode returns the most frequent value in vals. Ties are broken by taking
// the smallest value among the modal set, for determinism.
func mode(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	counts := make(map[int]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	best := vals[0]
	bestCount := 0
	distinct := make([]int, 0, len(counts))
	for v := range counts {
		distinct = append(distinct, v)
	}
	sort.Ints(distinct)
	for _, v := range distinct {
		if counts[v] > bestCount {
			bestCount = counts[v]
			best = v
		}
	}
	return float64(best)
}
