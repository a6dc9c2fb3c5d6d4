package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// GenerateIndex scans a FASTA file once and writes a samtools-faidx-compatible
// *.fai to out: one row per sequence of name, length, byte offset of the
// first base, bases per line, and bytes per line (http://www.htslib.org/doc/faidx.html).
// synthesizeIndex calls this when a FASTA is opened without a sidecar .fai,
// and plainHandle.Fetch's 1-based, inclusive-inclusive coordinates are
// computed directly from the five columns this writes.
func GenerateIndex(out io.Writer, in io.Reader) (err error) {
	var (
		idx         = tsv.NewWriter(out)
		r           = bufio.NewReader(in)
		seqName     string
		seqStartOff int64
		totalBases  int
		lineBases   int
		lineWidth   int
		byteOffset  int64
	)

	setErr := func(e error) {
		if e != nil && err == nil {
			err = e
		}
	}
	flushRecord := func() {
		idx.WriteString(seqName)
		idx.WriteInt64(int64(totalBases))
		idx.WriteInt64(seqStartOff)
		idx.WriteInt64(int64(lineBases))
		idx.WriteInt64(int64(lineWidth))
		setErr(idx.EndLine())
	}

	for done := false; !done && err == nil; {
		rawLine, readErr := r.ReadBytes('\n')
		if readErr == io.EOF {
			done = true
		} else if readErr != nil {
			setErr(readErr)
		}
		byteOffset += int64(len(rawLine))

		line := bytes.TrimRight(rawLine, "\r\n")
		if len(line) == 0 {
			continue
		}

		if line[0] == '>' {
			if lineWidth != 0 {
				if seqName == "" {
					setErr(errors.E(errors.Invalid, "fasta: sequence data before first header"))
				}
				flushRecord()
			}
			seqName = strings.Split(string(line[1:]), " ")[0]
			seqStartOff = byteOffset
			lineWidth, lineBases, totalBases = 0, 0, 0
			continue
		}

		if lineWidth == 0 {
			lineWidth = len(rawLine)
			lineBases = len(line)
		}
		totalBases += len(line)
	}
	flushRecord()
	setErr(idx.Flush())
	if byteOffset == 0 {
		setErr(errors.E(errors.Invalid, "fasta: empty FASTA file"))
	}
	return
}
