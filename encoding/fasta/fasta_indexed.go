package fasta

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/grailbio/base/errors"
)

type indexEntry struct {
	length    uint64
	offset    uint64
	lineBase  uint64
	lineWidth uint64
}

// plainHandle serves Fetch by seeking into an uncompressed, faidx-indexed
// FASTA file, without reading the whole thing into memory.
type plainHandle struct {
	seqs      map[string]indexEntry
	seqNames  []string
	reader    io.ReadSeekCloser
	bufOff    int64
	buf       []byte // caches file contents starting at bufOff.
	resultBuf []byte // temp for concatenating multi-line sequences.
	mutex     sync.Mutex
}

// ReadSeekCloser is satisfied by *os.File.
type ReadSeekCloser interface {
	io.ReadSeeker
	io.Closer
}

func newPlainHandle(fa ReadSeekCloser, index io.Reader) (Handle, error) {
	f := &plainHandle{seqs: make(map[string]indexEntry), reader: fa}
	scanner := bufio.NewScanner(index)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		matches := indexRegExp.FindStringSubmatch(line)
		if len(matches) != 6 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("fasta: invalid index line: %s", line))
		}
		ent := indexEntry{}
		ent.length, _ = strconv.ParseUint(matches[2], 10, 64)
		ent.offset, _ = strconv.ParseUint(matches[3], 10, 64)
		ent.lineBase, _ = strconv.ParseUint(matches[4], 10, 64)
		ent.lineWidth, _ = strconv.ParseUint(matches[5], 10, 64)
		f.seqs[matches[1]] = ent
		f.seqNames = append(f.seqNames, matches[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(errors.IO, "fasta: reading index", err)
	}
	sort.SliceStable(f.seqNames, func(i, j int) bool {
		return f.seqs[f.seqNames[i]].offset < f.seqs[f.seqNames[j]].offset
	})
	return f, nil
}

// FaiToReferenceLengths reads a fasta .fai file and returns a map of
// reference name to reference length, without opening the FASTA itself.
func FaiToReferenceLengths(index io.Reader) (map[string]uint32, error) {
	h, err := newPlainHandle(nil, index)
	if err != nil {
		return nil, err
	}
	return h.Lengths(), nil
}

func (f *plainHandle) Lengths() map[string]uint32 {
	m := make(map[string]uint32, len(f.seqs))
	for name, ent := range f.seqs {
		m[name] = uint32(ent.length)
	}
	return m
}

// read returns the range [off, off+n) from the underlying fasta file.
func (f *plainHandle) read(off int64, n int) ([]byte, error) {
	limit := off + int64(n)
	if off < f.bufOff || limit > f.bufOff+int64(len(f.buf)) {
		if newOffset, err := f.reader.Seek(off, io.SeekStart); err != nil || newOffset != off {
			return nil, errors.E(errors.IO, fmt.Sprintf("fasta: seeking to offset %d: %d, %v", off, newOffset, err))
		}
		bufSize := 8192
		if bufSize < n {
			bufSize = n
		}
		f.resizeBuf(&f.buf, bufSize)
		bytesRead, err := f.reader.Read(f.buf)
		if bytesRead < n {
			return nil, errors.E(errors.Invalid, "fasta: unexpected end of file (bad index? file doesn't end in newline?)")
		}
		if err != nil && err != io.EOF {
			return nil, errors.E(errors.IO, err)
		}
		f.bufOff = off
		f.buf = f.buf[:bytesRead]
	}
	return f.buf[off-f.bufOff : limit-f.bufOff], nil
}

func (f *plainHandle) resizeBuf(buf *[]byte, n int) {
	if cap(*buf) < n {
		*buf = make([]byte, n)
	} else {
		*buf = (*buf)[0:n]
	}
}

// Fetch implements Handle.Fetch(). start and end are 1-based and inclusive.
func (f *plainHandle) Fetch(seqName string, start, end uint32) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if start == 0 || end < start {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("fasta: invalid interval [%d, %d]", start, end))
	}
	ent, ok := f.seqs[seqName]
	if !ok {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("fasta: unknown sequence %q", seqName))
	}
	if uint64(end) > ent.length {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("fasta: interval [%d, %d] past end of %s (length %d)", start, end, seqName, ent.length))
	}

	// Translate to 0-based half-open [zeroStart, zeroEnd) for the byte-offset
	// arithmetic below.
	zeroStart := uint64(start - 1)
	zeroEnd := uint64(end)

	// Start the read at a byte offset allowing for the presence of newline
	// characters.
	charsPerNewline := ent.lineWidth - ent.lineBase
	offset := ent.offset + zeroStart + charsPerNewline*(zeroStart/ent.lineBase)

	// Figure out how many characters (including newlines) we should read,
	// and read them.
	firstLineBases := ent.lineBase - (zeroStart % ent.lineBase)
	newlinesToRead := uint64(0)
	if zeroEnd-zeroStart > firstLineBases {
		newlinesToRead = 1 + (zeroEnd-zeroStart-firstLineBases)/ent.lineBase
	}
	capacity := zeroEnd - zeroStart + newlinesToRead*charsPerNewline

	buffer, err := f.read(int64(offset), int(capacity))
	if err != nil && err != io.EOF {
		return nil, err
	}

	// Traverse the bytes we just read and copy the non-newline characters to
	// the result.
	f.resizeBuf(&f.resultBuf, int(zeroEnd-zeroStart))
	linePos := (offset - ent.offset) % ent.lineWidth
	resultPos := 0
	for i := range buffer {
		if linePos < ent.lineBase {
			f.resultBuf[resultPos] = buffer[i]
			resultPos++
		}
		linePos++
		if linePos == ent.lineWidth {
			linePos = 0
		}
	}
	out := make([]byte, resultPos)
	copy(out, f.resultBuf[:resultPos])
	return out, nil
}

// SeqNames implements Handle.SeqNames().
func (f *plainHandle) SeqNames() []string { return f.seqNames }

// Close implements Handle.Close().
func (f *plainHandle) Close() error {
	if f.reader == nil {
		return nil
	}
	return f.reader.Close()
}
