package sunk

import (
	"sort"

	"github.com/grailbio/base/log"
)

// readCtgGroup is the read-SUNK rows for one (read, ctg) pair, in ascending
// RPos order.
type readCtgGroup struct {
	read string
	ctg  string
	rows []ReadSunkRecord
}

// AssignReadsToContigs chooses, for each read, the contig and orientation
// best supported by its SUNK occurrences, per Opts.Bandwidth and
// Opts.GoodSunkThreshold.
func AssignReadsToContigs(rows []ReadSunkRecord, opts Opts) ([]ReadCtgAssignment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	groups := groupByReadCtg(rows)

	type candidate struct {
		ctg   string
		ort   Orientation
		count int
	}
	byRead := make(map[string][]candidate)
	readOrder := make([]string, 0)
	seenRead := make(map[string]bool)

	for _, g := range groups {
		if len(g.rows) < 2 {
			continue // no orientation can be inferred from a single SUNK.
		}
		ort, ok := inferOrientation(g.rows)
		if !ok {
			continue
		}
		count := countInBand(g.rows, ort, opts.Bandwidth)
		if !seenRead[g.read] {
			seenRead[g.read] = true
			readOrder = append(readOrder, g.read)
		}
		byRead[g.read] = append(byRead[g.read], candidate{ctg: g.ctg, ort: ort, count: count})
	}

	var out []ReadCtgAssignment
	for _, read := range readOrder {
		cands := byRead[read]
		best := cands[0]
		for _, c := range cands[1:] {
			if c.count > best.count {
				best = c
			}
		}
		if best.count <= opts.GoodSunkThreshold {
			continue
		}
		out = append(out, ReadCtgAssignment{
			Read:                 read,
			Ctg:                  best.ctg,
			SunksWithinBandwidth: best.count,
			Ort:                  best.ort,
		})
	}

	log.Printf("sunk: assigned %d of %d candidate reads to a contig", len(out), len(readOrder))
	return out, nil
}

// groupByReadCtg partitions rows (assumed sorted by (Read, RPos), as
// MapSunksToReads guarantees) into per-(read, ctg) groups, preserving RPos
// order within each group and first-occurrence order across groups.
func groupByReadCtg(rows []ReadSunkRecord) []readCtgGroup {
	idx := make(map[string]int)
	var groups []readCtgGroup
	for _, r := range rows {
		key := r.Read + "\x00" + r.Ctg
		if i, ok := idx[key]; ok {
			groups[i].rows = append(groups[i].rows, r)
			continue
		}
		idx[key] = len(groups)
		groups = append(groups, readCtgGroup{read: r.Read, ctg: r.Ctg, rows: []ReadSunkRecord{r}})
	}
	return groups
}

// inferOrientation implements §4.D step 2: the read is forward iff the mean
// of consecutive differences is positive on both the CPos and RPos axes.
func inferOrientation(rows []ReadSunkRecord) (Orientation, bool) {
	n := len(rows)
	if n < 2 {
		return 0, false
	}
	var cSum, rSum float64
	for i := 1; i < n; i++ {
		cSum += float64(int64(rows[i].CPos) - int64(rows[i-1].CPos))
		rSum += float64(int64(rows[i].RPos) - int64(rows[i-1].RPos))
	}
	cMean := cSum / float64(n-1)
	rMean := rSum / float64(n-1)
	if cMean > 0 && rMean > 0 {
		return Forward, true
	}
	return Reverse, true
}

// countInBand implements §4.D steps 3-4: compute apos for every row under
// the given orientation, then count rows within Bandwidth of the median.
func countInBand(rows []ReadSunkRecord, ort Orientation, bandwidth int) int {
	apos := make([]int64, len(rows))
	for i, r := range rows {
		if ort == Forward {
			apos[i] = int64(r.CPos) - int64(r.RPos)
		} else {
			apos[i] = int64(r.CPos) + int64(r.RPos)
		}
	}
	m := median(apos)

	count := 0
	for _, a := range apos {
		d := float64(a) - m
		if d < 0 {
			d = -d
		}
		if d < float64(bandwidth) {
			count++
		}
	}
	return count
}

func median(vals []int64) float64 {
	sorted := append([]int64(nil), vals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
