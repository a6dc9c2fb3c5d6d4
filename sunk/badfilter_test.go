package sunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowsWithCoverage builds goodReadSunks rows giving each id in counts the
// given number of occurrences, one per synthetic read.
func rowsWithCoverage(counts map[string]int) []ReadSunkRecord {
	var rows []ReadSunkRecord
	readNum := 0
	for id, n := range counts {
		ctg, group := "ctg1", idGroup(id)
		for i := 0; i < n; i++ {
			readNum++
			rows = append(rows, ReadSunkRecord{
				Read: "r" + string(rune('a'+readNum)),
				Ctg:  ctg, Group: group,
			})
		}
	}
	return rows
}

func idGroup(id string) uint32 {
	switch id {
	case "id1":
		return 1
	case "id2":
		return 2
	case "id3":
		return 3
	case "id4":
		return 4
	case "id5":
		return 5
	}
	panic("unknown id " + id)
}

func TestFilterBadSunksWorkedExample(t *testing.T) {
	// Coverage {10, 11, 10, 50, 1} across 5 ids: calibrating the mode only
	// from coverage > 2 gives {10, 11, 10, 50}, mode 10, tail 10+4*sqrt(10)
	// ~= 22.65. id4 (50) exceeds the tail; id5 (1) is below the floor of 2.
	rows := rowsWithCoverage(map[string]int{
		"id1": 10,
		"id2": 11,
		"id3": 10,
		"id4": 50,
		"id5": 1,
	})
	bad, err := FilterBadSunks(rows, DefaultOpts)
	require.NoError(t, err)

	badIDs := make(map[string]bool)
	for _, b := range bad {
		badIDs[b.ID] = true
	}
	assert.Len(t, bad, 2)
	assert.True(t, badIDs[sunkID("ctg1", 4)])
	assert.True(t, badIDs[sunkID("ctg1", 5)])
}

func TestMode(t *testing.T) {
	assert.Equal(t, 10.0, mode([]int{10, 11, 10, 50}))
	assert.Equal(t, 0.0, mode(nil))
}

func TestModeTieBreaksOnSmallestValue(t *testing.T) {
	// 3 and 7 both occur twice; the tie is broken toward the smaller value.
	assert.Equal(t, 3.0, mode([]int{3, 3, 7, 7}))
}
