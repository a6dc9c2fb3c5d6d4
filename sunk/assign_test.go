package sunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignReadsToContigsForward(t *testing.T) {
	// CPos and RPos both ascend together: forward orientation, all rows
	// within bandwidth of each other.
	rows := []ReadSunkRecord{
		{Read: "r1", RPos: 1, Ctg: "ctg1", CPos: 100, Group: 100},
		{Read: "r1", RPos: 50, Ctg: "ctg1", CPos: 150, Group: 150},
		{Read: "r1", RPos: 100, Ctg: "ctg1", CPos: 200, Group: 200},
	}
	opts := DefaultOpts
	opts.GoodSunkThreshold = 1

	out, err := AssignReadsToContigs(rows, opts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "r1", out[0].Read)
	assert.Equal(t, "ctg1", out[0].Ctg)
	assert.Equal(t, Forward, out[0].Ort)
	assert.Equal(t, 3, out[0].SunksWithinBandwidth)
}

func TestAssignReadsToContigsReverse(t *testing.T) {
	// RPos ascends while CPos descends: reverse orientation.
	rows := []ReadSunkRecord{
		{Read: "r1", RPos: 1, Ctg: "ctg1", CPos: 200, Group: 200},
		{Read: "r1", RPos: 50, Ctg: "ctg1", CPos: 150, Group: 150},
		{Read: "r1", RPos: 100, Ctg: "ctg1", CPos: 100, Group: 100},
	}
	out, err := AssignReadsToContigs(rows, DefaultOpts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, Reverse, out[0].Ort)
}

func TestAssignReadsToContigsPicksBestOfMultipleCandidates(t *testing.T) {
	rows := []ReadSunkRecord{
		// ctg1: only 2 SUNKs in band.
		{Read: "r1", RPos: 1, Ctg: "ctg1", CPos: 100, Group: 100},
		{Read: "r1", RPos: 50, Ctg: "ctg1", CPos: 150, Group: 150},
		// ctg2: 3 SUNKs in band, should win.
		{Read: "r1", RPos: 60, Ctg: "ctg2", CPos: 500, Group: 500},
		{Read: "r1", RPos: 110, Ctg: "ctg2", CPos: 550, Group: 550},
		{Read: "r1", RPos: 160, Ctg: "ctg2", CPos: 600, Group: 600},
	}
	out, err := AssignReadsToContigs(rows, DefaultOpts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ctg2", out[0].Ctg)
}

func TestAssignReadsToContigsDropsBelowThreshold(t *testing.T) {
	rows := []ReadSunkRecord{
		{Read: "r1", RPos: 1, Ctg: "ctg1", CPos: 100, Group: 100},
		{Read: "r1", RPos: 50, Ctg: "ctg1", CPos: 150, Group: 150},
	}
	opts := DefaultOpts
	opts.GoodSunkThreshold = 2 // exactly 2 in-band SUNKs must not clear a threshold of 2.

	out, err := AssignReadsToContigs(rows, opts)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAssignReadsToContigsSingleSunkCannotBeAssigned(t *testing.T) {
	rows := []ReadSunkRecord{
		{Read: "r1", RPos: 1, Ctg: "ctg1", CPos: 100, Group: 100},
	}
	out, err := AssignReadsToContigs(rows, DefaultOpts)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]int64{1, 2, 3}))
	assert.Equal(t, 2.5, median([]int64{1, 2, 3, 4}))
}
