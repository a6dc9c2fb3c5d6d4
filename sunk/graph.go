package sunk

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/minio/highwayhash"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ContigGraphResult is the pair of artefacts BuildContigGraphs produces for
// one contig.
type ContigGraphResult struct {
	Ctg          string
	Memberships  []ContigSunkMembership
	BedIntervals []BedInterval
}

// BuildContigGraphs partitions goodReadSunks by Ctg and, for each contig,
// extracts per-read SUNK components and aggregates them into a contig-wide
// co-occurrence graph whose connected components become BED intervals.
//
// readLengths is used to drop reads at or below Opts.MinReadLength, and
// badSunks marks "{ctg}:{group}" ids to exclude before component extraction.
func BuildContigGraphs(goodReadSunks []ReadSunkRecord, readLengths map[string]uint32, badSunks []BadSunk, opts Opts) ([]ContigGraphResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	bad := make(map[string]bool, len(badSunks))
	for _, b := range badSunks {
		bad[b.ID] = true
	}

	byCtg := partitionByCtg(goodReadSunks, readLengths, bad, opts)
	ctgs := make([]string, 0, len(byCtg))
	for ctg := range byCtg {
		ctgs = append(ctgs, ctg)
	}
	sort.Strings(ctgs)

	results := make([]ContigGraphResult, len(ctgs))
	err := traverse.Each(len(ctgs), func(i int) error {
		ctg := ctgs[i]
		result, err := buildOneContigGraph(ctg, byCtg[ctg], opts.OrientationTolerance)
		if err != nil {
			return err
		}
		results[i] = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("sunk: built SUNK graphs for %d contigs", len(results))
	return results, nil
}

// partitionByCtg applies the §4.F pre-filter (drop bad ids, require >= 2
// distinct ids per read, require read length > MinReadLength, sort and
// dedup) and groups the surviving rows by contig, then by read.
func partitionByCtg(rows []ReadSunkRecord, readLengths map[string]uint32, bad map[string]bool, opts Opts) map[string][]readRows {
	sorted := append([]ReadSunkRecord(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Read != sorted[j].Read {
			return sorted[i].Read < sorted[j].Read
		}
		return sorted[i].RPos < sorted[j].RPos
	})

	type key struct {
		ctg, read string
	}
	perReadPerCtg := make(map[key][]ReadSunkRecord)
	order := make(map[key]int)
	var keys []key

	for _, r := range sorted {
		if bad[sunkID(r.Ctg, r.Group)] {
			continue
		}
		if int(readLengths[r.Read]) <= opts.MinReadLength {
			continue
		}
		k := key{ctg: r.Ctg, read: r.Read}
		if _, ok := order[k]; !ok {
			order[k] = len(keys)
			keys = append(keys, k)
		}
		rws := perReadPerCtg[k]
		if len(rws) > 0 && rws[len(rws)-1] == r {
			continue // exact-duplicate row.
		}
		perReadPerCtg[k] = append(rws, r)
	}

	byCtg := make(map[string][]readRows)
	for _, k := range keys {
		rws := perReadPerCtg[k]
		distinctGroups := make(map[uint32]bool)
		for _, r := range rws {
			distinctGroups[r.Group] = true
		}
		if len(distinctGroups) < 2 {
			continue
		}
		byCtg[k.ctg] = append(byCtg[k.ctg], readRows{read: k.read, rows: rws})
	}
	return byCtg
}

type readRows struct {
	read string
	rows []ReadSunkRecord
}

// buildOneContigGraph runs largest_component per read, then aggregates the
// surviving (read, id) lists into the contig's co-occurrence graph.
func buildOneContigGraph(ctg string, reads []readRows, tolerance float64) (ContigGraphResult, error) {
	result := ContigGraphResult{Ctg: ctg}

	type readComponent struct {
		read string
		ids  []uint32
	}
	var components []readComponent

	for _, r := range reads {
		ids, err := largestComponent(r.rows, tolerance)
		if err != nil {
			log.Debug.Printf("sunk: skipping read %s on %s: %v", r.read, ctg, err)
			continue
		}
		if len(ids) == 0 {
			continue
		}
		components = append(components, readComponent{read: r.read, ids: ids})
		for _, id := range ids {
			result.Memberships = append(result.Memberships, ContigSunkMembership{Read: r.read, ID: id})
		}
	}

	g := simple.NewUndirectedGraph()
	seen := make(map[uint32]bool)
	for _, c := range components {
		for _, id := range c.ids {
			if !seen[id] {
				seen[id] = true
				g.AddNode(simple.Node(id))
			}
		}
		for a := 0; a < len(c.ids); a++ {
			for b := a + 1; b < len(c.ids); b++ {
				g.SetEdge(g.NewEdge(simple.Node(c.ids[a]), simple.Node(c.ids[b])))
			}
		}
	}

	for _, comp := range topo.ConnectedComponents(g) {
		if len(comp) <= 2 {
			continue
		}
		result.BedIntervals = append(result.BedIntervals, bedFromComponent(ctg, comp))
	}
	sort.Slice(result.BedIntervals, func(i, j int) bool { return result.BedIntervals[i].Start < result.BedIntervals[j].Start })

	return result, nil
}

func bedFromComponent(ctg string, nodes []graph.Node) BedInterval {
	min, max := uint32(math.MaxUint32), uint32(0)
	for _, n := range nodes {
		id := uint32(n.ID())
		if id < min {
			min = id
		}
		if id > max {
			max = id
		}
	}
	return BedInterval{Ctg: ctg, Start: min, End: max, Sunks: len(nodes)}
}

// pairEdge is a retained (id_i, id_j) pair surviving the in-band,
// orientation-consistent mask, carrying the rpos values used for the
// multi-SUNK dedup in step 7.
type pairEdge struct {
	idI, idJ   uint32
	rposI, rposJ uint32
}

// largestComponent implements §4.F's per-read component extraction. rows is
// one read's surviving SUNK occurrences on one contig (not yet sorted by
// CPos). tolerance bounds how far the read/contig displacement ratio between
// two SUNKs may stray from 1 and still be considered in band.
func largestComponent(rows []ReadSunkRecord, tolerance float64) ([]uint32, error) {
	ordered := append([]ReadSunkRecord(nil), rows...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CPos < ordered[j].CPos })
	n := len(ordered)

	type pair struct {
		i, j int
		sign bool // RPos[j] > RPos[i]
		band bool
	}
	var pairs []pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dc := absDiff(ordered[i].CPos, ordered[j].CPos)
			dr := absDiff(ordered[i].RPos, ordered[j].RPos)
			band := false
			if dc != 0 {
				ratio := float64(dr) / float64(dc)
				band = ratio > 1-tolerance && ratio < 1+tolerance
			}
			pairs = append(pairs, pair{i: i, j: j, sign: ordered[j].RPos > ordered[i].RPos, band: band})
		}
	}

	inBand := 0
	for _, p := range pairs {
		if p.band {
			inBand++
		}
	}
	if inBand < 1 {
		return nil, errors.E(errors.Precondition, "sunk: no in-band SUNK pairs for this read")
	}

	trueCount, falseCount := 0, 0
	firstSign := false
	firstSeen := false
	for _, p := range pairs {
		if !p.band {
			continue
		}
		if !firstSeen {
			firstSign = p.sign
			firstSeen = true
		}
		if p.sign {
			trueCount++
		} else {
			falseCount++
		}
	}
	trueOrient := firstSign
	if trueCount > falseCount {
		trueOrient = true
	} else if falseCount > trueCount {
		trueOrient = false
	}

	var edges []pairEdge
	for _, p := range pairs {
		if !p.band || p.sign != trueOrient {
			continue
		}
		edges = append(edges, pairEdge{
			idI: ordered[p.i].Group, idJ: ordered[p.j].Group,
			rposI: ordered[p.i].RPos, rposJ: ordered[p.j].RPos,
		})
	}

	edges = dedupMultiSunkPairs(edges)

	// Edges carry the (id_j-id_i)-(rpos_j-rpos_i) residual as weight. Nothing
	// downstream acts on it yet; it's retained for future filtering.
	g := simple.NewWeightedUndirectedGraph(0, 0)
	seen := make(map[uint32]bool)
	for _, e := range edges {
		if !seen[e.idI] {
			seen[e.idI] = true
			g.AddNode(simple.Node(e.idI))
		}
		if !seen[e.idJ] {
			seen[e.idJ] = true
			g.AddNode(simple.Node(e.idJ))
		}
		weight := float64(int64(e.idJ)-int64(e.idI)) - float64(int64(e.rposJ)-int64(e.rposI))
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(e.idI), T: simple.Node(e.idJ), W: weight})
	}

	comps := topo.ConnectedComponents(g)
	if len(comps) == 0 {
		return nil, nil
	}
	largest := comps[0]
	for _, c := range comps[1:] {
		if len(c) > len(largest) {
			largest = c
		}
	}
	ids := make([]uint32, len(largest))
	for i, node := range largest {
		ids[i] = uint32(node.ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// pairHashKey is a stable dedup key for a (idI, idJ, isMultiSunk)
// combination, hashed with highwayhash so the key doesn't grow a new Go
// struct type per dimension added to the dedup rule.
type pairHashKey = [highwayhash.Size]uint8

var zeroHashSeed pairHashKey

func hashPair(idI, idJ uint32, multi bool) pairHashKey {
	var buf [9]byte
	binary.LittleEndian.PutUint32(buf[0:4], idI)
	binary.LittleEndian.PutUint32(buf[4:8], idJ)
	if multi {
		buf[8] = 1
	}
	return highwayhash.Sum(buf[:], zeroHashSeed[:])
}

// dedupMultiSunkPairs implements §4.F step 7: pairs that recur across more
// than two distinct RPos values are tagged multi-SUNK, then exactly one row
// survives per (idI, idJ, isMultiSunk) combination, first occurrence wins.
func dedupMultiSunkPairs(edges []pairEdge) []pairEdge {
	type key struct{ idI, idJ uint32 }
	rposSeen := make(map[key]map[uint32]bool)
	for _, e := range edges {
		k := key{e.idI, e.idJ}
		if rposSeen[k] == nil {
			rposSeen[k] = make(map[uint32]bool)
		}
		rposSeen[k][e.rposI] = true
		rposSeen[k][e.rposJ] = true
	}
	isMulti := make(map[key]bool, len(rposSeen))
	for k, rposes := range rposSeen {
		isMulti[k] = len(rposes) > 2
	}

	seen := make(map[pairHashKey]bool)
	var out []pairEdge
	for _, e := range edges {
		h := hashPair(e.idI, e.idJ, isMulti[key{e.idI, e.idJ}])
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, e)
	}
	return out
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
