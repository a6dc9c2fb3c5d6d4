package sunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tandemRow(read string, cpos, rpos uint32) ReadSunkRecord {
	return ReadSunkRecord{Read: read, RPos: rpos, Ctg: "ctg1", CPos: cpos, Group: cpos}
}

func TestBuildContigGraphsProducesBedInterval(t *testing.T) {
	rows := []ReadSunkRecord{
		tandemRow("readA", 100, 10), tandemRow("readA", 200, 110), tandemRow("readA", 300, 210),
		tandemRow("readB", 100, 5), tandemRow("readB", 200, 105), tandemRow("readB", 300, 205),
	}
	lengths := map[string]uint32{"readA": 20000, "readB": 20000}

	results, err := BuildContigGraphs(rows, lengths, nil, DefaultOpts)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "ctg1", r.Ctg)
	require.Len(t, r.BedIntervals, 1)
	assert.Equal(t, uint32(100), r.BedIntervals[0].Start)
	assert.Equal(t, uint32(300), r.BedIntervals[0].End)
	assert.Equal(t, 3, r.BedIntervals[0].Sunks)
	assert.Len(t, r.Memberships, 6) // 3 ids * 2 reads
}

func TestBuildContigGraphsDropsBadSunks(t *testing.T) {
	rows := []ReadSunkRecord{
		tandemRow("readA", 100, 10), tandemRow("readA", 200, 110), tandemRow("readA", 300, 210),
	}
	lengths := map[string]uint32{"readA": 20000}
	bad := []BadSunk{{ID: sunkID("ctg1", 200), Count: 999}}

	results, err := BuildContigGraphs(rows, lengths, bad, DefaultOpts)
	require.NoError(t, err)
	// Only 2 distinct groups remain (100, 300) for readA: enough to pass the
	// >= 2 distinct-ids pre-filter, but a component needs > 2 nodes to emit a
	// BED interval, so no interval should be produced.
	if len(results) == 1 {
		assert.Empty(t, results[0].BedIntervals)
	}
}

func TestBuildContigGraphsDropsShortReads(t *testing.T) {
	rows := []ReadSunkRecord{
		tandemRow("readA", 100, 10), tandemRow("readA", 200, 110), tandemRow("readA", 300, 210),
	}
	lengths := map[string]uint32{"readA": 5} // at/below MinReadLength

	results, err := BuildContigGraphs(rows, lengths, nil, DefaultOpts)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLargestComponentRejectsNoInBandPairs(t *testing.T) {
	// dr/dc ratios far from 1 for every pair: nothing is in band.
	rows := []ReadSunkRecord{
		{Read: "r1", RPos: 1, Ctg: "ctg1", CPos: 100, Group: 100},
		{Read: "r1", RPos: 1000, Ctg: "ctg1", CPos: 101, Group: 101},
	}
	_, err := largestComponent(rows, DefaultOpts.OrientationTolerance)
	assert.Error(t, err)
}

func TestDedupMultiSunkPairsCollapsesPerIDPair(t *testing.T) {
	edges := []pairEdge{
		{idI: 1, idJ: 2, rposI: 10, rposJ: 20},
		{idI: 1, idJ: 2, rposI: 30, rposJ: 40}, // same id pair, different rpos: still collapses to one row
		{idI: 3, idJ: 4, rposI: 50, rposJ: 60}, // distinct id pair survives independently
	}
	out := dedupMultiSunkPairs(edges)
	require.Len(t, out, 2)
	assert.Equal(t, uint32(10), out[0].rposI) // first occurrence for (1,2) wins
}

func TestHashPairDistinguishesMultiFlag(t *testing.T) {
	a := hashPair(1, 2, false)
	b := hashPair(1, 2, true)
	assert.NotEqual(t, a, b)
}
