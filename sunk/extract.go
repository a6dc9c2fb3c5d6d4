package sunk

import (
	"fmt"
	"math"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/koisland/gavisunk/encoding/fasta"
)

// kmerObservation is what ExtractSunks tracks per distinct canonical kmer
// while scanning a single sequence: how many times it was seen (within that
// sequence) and the position of its first occurrence.
type kmerObservation struct {
	count    uint32
	firstPos uint32
}

// ExtractSunks finds every Singly-Unique Nucleotide K-mer in the sequences
// listed by h.SeqNames(), using h to fetch bases. It scans each sequence in
// parallel, reduces their per-sequence kmer counts into a genome-wide total,
// and keeps only kmers whose genome-wide count is exactly 1.
//
// Returned rows are sorted by (Ctg, CPos) and annotated with Group, the
// run-length bucket id described by the SUNK record invariant: rows whose
// CPos differ by exactly 1 and share Ctg belong to the same group, labelled
// by the group's first CPos.
func ExtractSunks(h fasta.Handle, opts Opts) ([]SunkRecord, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seqNames := h.SeqNames()
	lengths := h.Lengths()

	perSeq := make([]map[Kmer]*kmerObservation, len(seqNames))
	log.Printf("sunk: extracting SUNKs from %d sequences (k=%d)", len(seqNames), opts.KmerLength)

	err := traverse.Each(len(seqNames), func(i int) error {
		name := seqNames[i]
		length := lengths[name]
		if length == 0 {
			perSeq[i] = map[Kmer]*kmerObservation{}
			return nil
		}
		if uint64(length) > math.MaxUint32 {
			return errors.E(errors.Internal, fmt.Sprintf("sunk: sequence %s length %d overflows uint32", name, length))
		}
		seq, err := h.Fetch(name, 1, length)
		if err != nil {
			return errors.E(errors.IO, fmt.Sprintf("sunk: fetching %s", name), err)
		}
		perSeq[i] = countKmers(seq, opts.KmerLength)
		return nil
	})
	if err != nil {
		return nil, err
	}

	global := make(map[Kmer]uint64, 1<<20)
	for _, m := range perSeq {
		for kmer, obs := range m {
			global[kmer] += uint64(obs.count)
		}
	}

	var rows []SunkRecord
	for i, name := range seqNames {
		for kmer, obs := range perSeq[i] {
			if global[kmer] != 1 {
				continue
			}
			rows = append(rows, SunkRecord{
				Ctg:  name,
				CPos: obs.firstPos,
				Kmer: renderKmer(kmer, opts.KmerLength),
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Ctg != rows[j].Ctg {
			return rows[i].Ctg < rows[j].Ctg
		}
		return rows[i].CPos < rows[j].CPos
	})
	assignGroups(rows)

	log.Printf("sunk: found %d SUNKs", len(rows))
	return rows, nil
}

// countKmers slides a k-mer window across seq, recording, for each distinct
// canonical kmer, how many times it occurs (forward or reverse-complement)
// and the earliest position at which it was seen. Forward and
// reverse-complement occurrences of the same canonical kmer are collapsed:
// only the first-encountered orientation's position is kept, satisfying the
// "collapse palindromic double counts" rule in one pass.
func countKmers(seq []byte, k int) map[Kmer]*kmerObservation {
	m := make(map[Kmer]*kmerObservation, len(seq))
	kz := newKmerizer(k)
	kz.Reset(seq)
	for kz.Scan() {
		win := kz.Get()
		canon := win.canonical()
		obs, ok := m[canon]
		if !ok {
			obs = &kmerObservation{firstPos: win.pos + 1}
			m[canon] = obs
		}
		obs.count++
	}
	return m
}

// renderKmer reconstructs the canonical kmer's ASCII representation from its
// 2-bit packed form.
func renderKmer(k Kmer, length int) string {
	const bases = "ACGT"
	b := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		b[i] = bases[k&3]
		k >>= 2
	}
	return string(b)
}

// assignGroups fills in the Group field of rows, which must already be
// sorted by (Ctg, CPos). A run of rows with consecutive CPos values on the
// same Ctg forms one group, labelled by the run's first CPos.
func assignGroups(rows []SunkRecord) {
	for i := range rows {
		if i > 0 && rows[i].Ctg == rows[i-1].Ctg && rows[i].CPos == rows[i-1].CPos+1 {
			rows[i].Group = rows[i-1].Group
		} else {
			rows[i].Group = rows[i].CPos
		}
	}
}
