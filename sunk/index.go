package sunk

import (
	"encoding/binary"

	farm "github.com/dgryski/go-farm"
)

// sunkIndex is an open-addressed kmer -> SunkRecord map, hashed with
// farmhash rather than relying on the runtime map's built-in hashing. A
// SUNK's defining property is a global reference count of exactly one, so
// unlike the gene-list index it's grounded on, each bucket holds at most one
// record; there's no outlined overflow storage to manage.
type sunkIndex struct {
	entries []sunkIndexEntry
	mask    uint64
}

type sunkIndexEntry struct {
	valid bool
	kmer  Kmer
	rec   SunkRecord
}

func newSunkIndex(sunks []SunkRecord) *sunkIndex {
	size := nextPow2(2*len(sunks) + 1)
	idx := &sunkIndex{entries: make([]sunkIndexEntry, size), mask: uint64(size - 1)}
	for _, s := range sunks {
		idx.insert(asciiToKmer([]byte(s.Kmer)), s)
	}
	return idx
}

func hashKmer(k Kmer) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(k))
	return farm.Hash64WithSeed(buf[:], 0)
}

func (idx *sunkIndex) insert(k Kmer, rec SunkRecord) {
	h := hashKmer(k) & idx.mask
	for {
		if !idx.entries[h].valid {
			idx.entries[h] = sunkIndexEntry{valid: true, kmer: k, rec: rec}
			return
		}
		if idx.entries[h].kmer == k {
			return // a SUNK's kmer is globally unique; a repeat insert is a no-op.
		}
		h = (h + 1) & idx.mask
	}
}

// get returns the SunkRecord for k, if any.
func (idx *sunkIndex) get(k Kmer) (SunkRecord, bool) {
	h := hashKmer(k) & idx.mask
	for {
		e := idx.entries[h]
		if !e.valid {
			return SunkRecord{}, false
		}
		if e.kmer == k {
			return e.rec, true
		}
		h = (h + 1) & idx.mask
	}
}

func nextPow2(n int) int {
	size := 1
	for size < n {
		size *= 2
	}
	return size
}
