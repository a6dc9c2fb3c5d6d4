// Command gavisunk locates Singly-Unique Nucleotide K-mers (SUNKs) in a
// genome assembly, maps them onto a set of long reads, assigns each read to
// a contig and orientation, filters out SUNKs with anomalous coverage, and
// groups the surviving read-SUNK co-occurrences into per-contig BED
// intervals.
//
// Each pipeline stage writes its output as a TSV (or, for the final stage,
// BED) file under -out-dir. For the stages before the final one, a rerun
// that finds the stage's output file already present loads it instead of
// recomputing, so a pipeline interrupted partway through resumes where it
// left off. The final stage's per-contig outputs are not loaded from disk:
// that stage is always recomputed and its files rewritten.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/koisland/gavisunk/encoding/fasta"
	"github.com/koisland/gavisunk/sunk"
)

func usage() {
	fmt.Fprintln(os.Stderr, `
gavisunk finds SUNKs in a genome assembly, maps them onto long reads, and
emits per-contig BED intervals of well-supported, multi-read SUNK clusters.

Usage:
  gavisunk -asm genome.fa -reads reads.fa -out-dir ./out [flags]
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage

	var (
		asmPath   = flag.String("asm", "", "Path to the assembly FASTA (optionally .gz/.bgz).")
		readsPath = flag.String("reads", "", "Path to the long-read FASTA (optionally .gz/.bgz).")
		outDir    = flag.String("out-dir", "", "Directory for stage outputs. Created if missing.")
		contigs   = flag.String("contig-list", "", "Comma-separated list of contigs to emit BED output for. Empty means all contigs.")
	)
	opts := sunk.DefaultOpts
	flag.IntVar(&opts.KmerLength, "k", opts.KmerLength, "SUNK k-mer length.")
	flag.IntVar(&opts.Bandwidth, "bandwidth", opts.Bandwidth, "Half-width of the band around a read's median adjusted position within which a SUNK counts as in band.")
	flag.IntVar(&opts.GoodSunkThreshold, "good-sunk-threshold", opts.GoodSunkThreshold, "A read-contig assignment is kept only with more than this many in-band SUNKs.")
	flag.IntVar(&opts.MinReadLength, "min-read-len", opts.MinReadLength, "Reads at or below this length are dropped when building contig graphs.")
	flag.Float64Var(&opts.OrientationTolerance, "orientation-tolerance", opts.OrientationTolerance, "Max deviation from 1 in the read/contig displacement ratio still considered in band.")
	flag.Float64Var(&opts.BadSunkRMSFactor, "bad-sunk-rms-factor", opts.BadSunkRMSFactor, "Scales the coverage tail cutoff: bad if coverage > mode + factor*sqrt(mode).")
	flag.Parse()

	if *asmPath == "" || *readsPath == "" || *outDir == "" {
		usage()
	}
	if err := opts.Validate(); err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("gavisunk: creating %s: %v", *outDir, err)
	}

	ctx := vcontext.Background()
	if err := run(ctx, *asmPath, *readsPath, *outDir, *contigs, opts); err != nil {
		log.Fatal(err)
	}
	log.Printf("gavisunk: done")
}

func run(ctx context.Context, asmPath, readsPath, outDir, contigList string, opts sunk.Opts) error {
	asm, err := fasta.Open(asmPath)
	if err != nil {
		return errors.E(errors.IO, fmt.Sprintf("gavisunk: opening assembly %s", asmPath), err)
	}
	defer asm.Close() // nolint: errcheck

	reads, err := fasta.Open(readsPath)
	if err != nil {
		return errors.E(errors.IO, fmt.Sprintf("gavisunk: opening reads %s", readsPath), err)
	}
	defer reads.Close() // nolint: errcheck

	// Stage B: extract SUNKs from the assembly.
	sunksPath := filepath.Join(outDir, "asm_sunks.tsv")
	sunks, err := loadOrCompute(ctx, sunksPath,
		func() ([]sunk.SunkRecord, error) { return sunk.ExtractSunks(asm, opts) },
		sunk.LoadSunkRecords, sunk.WriteSunkRecords)
	if err != nil {
		return err
	}

	// Stage C: map SUNKs onto reads.
	readSunksPath := filepath.Join(outDir, "read_sunks.tsv")
	readSunks, err := loadOrCompute(ctx, readSunksPath,
		func() ([]sunk.ReadSunkRecord, error) { return sunk.MapSunksToReads(reads, sunks, opts) },
		sunk.LoadReadSunkRecords, sunk.WriteReadSunkRecords)
	if err != nil {
		return err
	}

	// Stage D: assign reads to a contig and orientation.
	assignPath := filepath.Join(outDir, "read_ctg_mapping.tsv")
	assignments, err := loadOrCompute(ctx, assignPath,
		func() ([]sunk.ReadCtgAssignment, error) { return sunk.AssignReadsToContigs(readSunks, opts) },
		sunk.LoadReadCtgAssignments, sunk.WriteReadCtgAssignments)
	if err != nil {
		return err
	}

	goodReads := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		goodReads[a.Read] = true
	}
	var goodReadSunks []sunk.ReadSunkRecord
	for _, r := range readSunks {
		if goodReads[r.Read] {
			goodReadSunks = append(goodReadSunks, r)
		}
	}
	if err := writeIfAbsent(ctx, filepath.Join(outDir, "read_sunks_good.tsv"), goodReadSunks, sunk.WriteReadSunkRecords); err != nil {
		return err
	}

	// Stage E: filter SUNKs with anomalous read coverage.
	badPath := filepath.Join(outDir, "read_sunks_bad.tsv")
	badSunks, err := loadOrCompute(ctx, badPath,
		func() ([]sunk.BadSunk, error) { return sunk.FilterBadSunks(goodReadSunks, opts) },
		sunk.LoadBadSunks, sunk.WriteBadSunks)
	if err != nil {
		return err
	}

	// Stage F: build per-contig co-occurrence graphs and emit BED intervals.
	lengths := reads.Lengths()
	results, err := sunk.BuildContigGraphs(goodReadSunks, lengths, badSunks, opts)
	if err != nil {
		return err
	}

	want := parseContigList(contigList)
	for _, r := range results {
		if want != nil && !want[r.Ctg] {
			continue
		}
		if err := createAndWrite(ctx, filepath.Join(outDir, r.Ctg+"_sunks.tsv"), r.Memberships, sunk.WriteContigSunkMemberships); err != nil {
			return err
		}
		if err := createAndWrite(ctx, filepath.Join(outDir, r.Ctg+".bed"), r.BedIntervals, sunk.WriteBedIntervals); err != nil {
			return err
		}
	}
	return nil
}

func parseContigList(s string) map[string]bool {
	if s == "" {
		return nil
	}
	m := make(map[string]bool)
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			m[c] = true
		}
	}
	return m
}

// loadOrCompute loads a stage's cached TSV output if present, else computes
// it via compute and writes it out for next time. File I/O goes through
// grailbio/base/file so cache paths can later point at non-local backends.
func loadOrCompute[T any](ctx context.Context, path string, compute func() ([]T, error), load func(io.Reader) ([]T, error), write func(io.Writer, []T) error) ([]T, error) {
	if sunk.Exists(path) {
		log.Printf("gavisunk: loading cached %s", path)
		f, err := file.Open(ctx, path)
		if err != nil {
			return nil, errors.E(errors.IO, fmt.Sprintf("gavisunk: opening %s", path), err)
		}
		defer f.Close(ctx) // nolint: errcheck
		return load(f.Reader(ctx))
	}
	rows, err := compute()
	if err != nil {
		return nil, err
	}
	if err := createAndWrite(ctx, path, rows, write); err != nil {
		return nil, err
	}
	return rows, nil
}

func writeIfAbsent[T any](ctx context.Context, path string, rows []T, write func(io.Writer, []T) error) error {
	if sunk.Exists(path) {
		return nil
	}
	return createAndWrite(ctx, path, rows, write)
}

func createAndWrite[T any](ctx context.Context, path string, rows []T, write func(io.Writer, []T) error) error {
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(errors.IO, fmt.Sprintf("gavisunk: creating %s", path), err)
	}
	if err := write(f.Writer(ctx), rows); err != nil {
		f.Close(ctx) // nolint: errcheck
		return err
	}
	return f.Close(ctx)
}
