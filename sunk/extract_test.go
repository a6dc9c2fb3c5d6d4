package sunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignGroupsBucketsConsecutiveCPos(t *testing.T) {
	rows := []SunkRecord{
		{Ctg: "ctg1", CPos: 10},
		{Ctg: "ctg1", CPos: 11},
		{Ctg: "ctg1", CPos: 12},
		{Ctg: "ctg1", CPos: 20}, // gap: starts a new group
		{Ctg: "ctg2", CPos: 20}, // different contig: starts a new group even though CPos is contiguous in value
	}
	assignGroups(rows)

	assert.Equal(t, uint32(10), rows[0].Group)
	assert.Equal(t, uint32(10), rows[1].Group)
	assert.Equal(t, uint32(10), rows[2].Group)
	assert.Equal(t, uint32(20), rows[3].Group)
	assert.Equal(t, uint32(20), rows[4].Group)
}

func TestCountKmersCollapsesReverseComplement(t *testing.T) {
	// pos 0 "AAGG" and pos 6 "CCTT" are reverse complements of each other and
	// must land on the same canonical map key.
	seq := []byte("AAGGTTCCTT")
	m := countKmers(seq, 4)

	kz := newKmerizer(4)
	kz.Reset(seq)
	require.True(t, kz.Scan())
	canon := kz.Get().canonical()

	obs, ok := m[canon]
	require.True(t, ok)
	assert.Equal(t, uint32(2), obs.count)
	assert.Equal(t, uint32(1), obs.firstPos) // 1-based position of the first occurrence
}

func TestExtractSunksFiltersNonUniqueKmers(t *testing.T) {
	// "AAAACCCC" placed on both contigs makes every one of its kmers
	// non-unique across the assembly. The flanking "GGGGTTTT" is its reverse
	// complement, so its kmers share canonical keys with those and are not
	// unique either; only the palindromic junction kmer "CCGG" on ctg1
	// survives.
	h := newFakeHandle(map[string]string{
		"ctg1": "AAAACCCCGGGGTTTT",
		"ctg2": "AAAACCCC",
	})
	opts := DefaultOpts
	opts.KmerLength = 4

	rows, err := ExtractSunks(h, opts)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	seen := make(map[string]int)
	for _, r := range rows {
		seen[r.Kmer]++
	}
	for kmer, n := range seen {
		assert.Equal(t, 1, n, "kmer %s appears in more than one output row", kmer)
	}

	// Rows must be sorted by (Ctg, CPos).
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		require.True(t, prev.Ctg < cur.Ctg || (prev.Ctg == cur.Ctg && prev.CPos < cur.CPos))
	}

	// ctg2 is entirely made of the shared region, so none of its kmers survive.
	for _, r := range rows {
		assert.NotEqual(t, "ctg2", r.Ctg)
	}
}

func TestExtractSunksRejectsInvalidOpts(t *testing.T) {
	h := newFakeHandle(map[string]string{"ctg1": "ACGTACGT"})
	opts := DefaultOpts
	opts.KmerLength = 0
	_, err := ExtractSunks(h, opts)
	assert.Error(t, err)
}
