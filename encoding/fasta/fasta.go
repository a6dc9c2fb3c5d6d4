// Package fasta contains code for reading (optionally indexed) FASTA files.
// See http://www.htslib.org/doc/faidx.html.  Briefly, FASTA files consist of a
// number of named sequences that may be interrupted by newlines.  For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appearing after a space is ignored.
// For example, '>chr1 A viral sequence' becomes 'chr1'.
//
// Coordinates passed to and returned from this package are 1-based and fully
// closed, i.e. Fetch(name, 1, 1) returns the first base of the sequence. This
// matches the convention used by samtools faidx and htslib region strings,
// which is what most assemblers and long-read fetch tools expect.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/klauspost/compress/gzip"
)

var indexRegExp = regexp.MustCompile(`^(\S+)\t(\d+)\t(\d+)\t(\d+)\t(\d+)\s*$`)

// Handle is a randomly-accessible, already-indexed FASTA file. A Handle may
// be shared across goroutines; implementations must serialize their own
// access to the underlying file.
type Handle interface {
	// Fetch returns the bases of seqName over the 1-based, fully-closed
	// interval [start, end]. It returns an error of kind errors.NotExist if
	// seqName is unknown, and errors.Invalid if the interval falls outside
	// the sequence.
	Fetch(seqName string, start, end uint32) ([]byte, error)

	// Lengths returns the length, in bases, of every sequence in the file.
	Lengths() map[string]uint32

	// SeqNames returns the names of all sequences, in the order they appear
	// in the FASTA file.
	SeqNames() []string

	// Close releases the underlying file descriptor, if any.
	Close() error
}

// Open opens the FASTA file at path for random access, returning a Handle.
//
// If path names a block-compressed file (".gz" or ".bgz" suffix), the whole
// file is decompressed into memory once, since klauspost/compress's gzip
// reader does not expose the block boundaries a true bgzf random-access
// index would seek on. Plain files are served directly off disk.
//
// Open looks for an index at path+".fai". When absent, it synthesizes one by
// scanning the FASTA file once (see GenerateIndex) and, on a best-effort
// basis, writes it back next to the FASTA file so that later calls can skip
// the scan; a failure to persist the index is not fatal.
func Open(path string) (Handle, error) {
	if isGzipPath(path) {
		return openCompressed(path)
	}
	return openIndexed(path)
}

func isGzipPath(path string) bool {
	return strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".bgz")
}

func openCompressed(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(errors.NotExist, err)
	}
	defer f.Close() // nolint: errcheck

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("fasta: %s is not valid gzip/bgzf", path), err)
	}
	fa, err := newInMemory(zr)
	if err != nil {
		return nil, err
	}
	return fa, nil
}

func openIndexed(path string) (Handle, error) {
	faiPath := path + ".fai"
	faiBytes, err := os.ReadFile(faiPath)
	if os.IsNotExist(err) {
		faiBytes, err = synthesizeIndex(path, faiPath)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.E(errors.NotExist, fmt.Sprintf("fasta: opening %s", path), err)
		}
		return nil, errors.E(errors.IO, fmt.Sprintf("fasta: reading index for %s", path), err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(errors.NotExist, err)
	}
	return newPlainHandle(f, strings.NewReader(string(faiBytes)))
}

// synthesizeIndex builds a *.fai by scanning fastaPath and, best-effort,
// writes it to faiPath so future opens don't pay the scan again.
func synthesizeIndex(fastaPath, faiPath string) ([]byte, error) {
	in, err := os.Open(fastaPath)
	if err != nil {
		return nil, err
	}
	defer in.Close() // nolint: errcheck

	var buf strings.Builder
	if err := GenerateIndex(&buf, bufio.NewReader(in)); err != nil {
		return nil, err
	}
	faiBytes := []byte(buf.String())
	if out, werr := os.Create(faiPath); werr == nil {
		_, _ = out.Write(faiBytes)
		_ = out.Close()
	}
	return faiBytes, nil
}

// inMemory serves Fetch out of a fully decompressed, in-memory copy of the
// FASTA data. It backs compressed inputs, where we can't cheaply seek.
type inMemory struct {
	seqs     map[string][]byte
	seqNames []string
}

func newInMemory(r io.Reader) (*inMemory, error) {
	fa := &inMemory{seqs: make(map[string][]byte)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 64*1024*1024)
	var seqName string
	var seq []byte
	flush := func() {
		if seqName != "" {
			fa.seqs[seqName] = seq
			fa.seqNames = append(fa.seqNames, seqName)
		}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			seqName = strings.Split(line[1:], " ")[0]
			seq = nil
			continue
		}
		seq = append(seq, line...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(errors.IO, "fasta: reading compressed sequence data", err)
	}
	flush()
	if len(fa.seqNames) == 0 {
		return nil, errors.E(errors.Invalid, "fasta: empty FASTA file")
	}
	return fa, nil
}

func (f *inMemory) Fetch(seqName string, start, end uint32) ([]byte, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("fasta: unknown sequence %q", seqName))
	}
	if start == 0 || end < start {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("fasta: invalid interval [%d, %d]", start, end))
	}
	if uint64(end) > uint64(len(s)) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("fasta: interval [%d, %d] past end of %s (length %d)", start, end, seqName, len(s)))
	}
	return s[start-1 : end], nil
}

func (f *inMemory) Lengths() map[string]uint32 {
	m := make(map[string]uint32, len(f.seqs))
	for name, s := range f.seqs {
		m[name] = uint32(len(s))
	}
	return m
}

func (f *inMemory) SeqNames() []string { return f.seqNames }
func (f *inMemory) Close() error       { return nil }
