package sunk

import "github.com/grailbio/base/errors"

// fakeHandle is a minimal in-memory fasta.Handle double, so extract/mapper
// tests don't need to round-trip through the filesystem.
type fakeHandle struct {
	names []string
	seqs  map[string][]byte
}

func newFakeHandle(seqs map[string]string) *fakeHandle {
	h := &fakeHandle{seqs: make(map[string][]byte, len(seqs))}
	for name, seq := range seqs {
		h.names = append(h.names, name)
		h.seqs[name] = []byte(seq)
	}
	return h
}

func (h *fakeHandle) Fetch(seqName string, start, end uint32) ([]byte, error) {
	s, ok := h.seqs[seqName]
	if !ok {
		return nil, errors.E(errors.NotExist, "fakeHandle: unknown sequence "+seqName)
	}
	if start == 0 || end < start || uint64(end) > uint64(len(s)) {
		return nil, errors.E(errors.Invalid, "fakeHandle: interval out of range")
	}
	return s[start-1 : end], nil
}

func (h *fakeHandle) Lengths() map[string]uint32 {
	m := make(map[string]uint32, len(h.seqs))
	for name, s := range h.seqs {
		m[name] = uint32(len(s))
	}
	return m
}

func (h *fakeHandle) SeqNames() []string { return h.names }
func (h *fakeHandle) Close() error       { return nil }
