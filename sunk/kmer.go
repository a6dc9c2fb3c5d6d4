package sunk

import (
	"github.com/grailbio/base/simd"

	"github.com/koisland/gavisunk/biosimd"
)

const invalidKmerBits = uint8(255)

var (
	asciiToKmerMap                  [256]uint8
	asciiToReverseComplementKmerMap [256]uint8
)

func init() {
	for i := range asciiToKmerMap {
		asciiToKmerMap[i] = invalidKmerBits
		asciiToReverseComplementKmerMap[i] = invalidKmerBits
	}
	asciiToKmerMap['A'] = 0
	asciiToKmerMap['a'] = 0
	asciiToKmerMap['C'] = 1
	asciiToKmerMap['c'] = 1
	asciiToKmerMap['G'] = 2
	asciiToKmerMap['g'] = 2
	asciiToKmerMap['T'] = 3
	asciiToKmerMap['t'] = 3

	asciiToReverseComplementKmerMap['A'] = 3
	asciiToReverseComplementKmerMap['a'] = 3
	asciiToReverseComplementKmerMap['C'] = 2
	asciiToReverseComplementKmerMap['c'] = 2
	asciiToReverseComplementKmerMap['G'] = 1
	asciiToReverseComplementKmerMap['g'] = 1
	asciiToReverseComplementKmerMap['T'] = 0
	asciiToReverseComplementKmerMap['t'] = 0
}

// Kmer is a compact 2-bit-per-base encoding of a sequence of ACGT, up to 32
// bases (the package only ever uses k <= 32, enforced by Opts.Validate).
type Kmer uint64

// invalidKmer is a sentinel returned for windows containing an ambiguity
// code (anything other than upper/lowercase A/C/G/T).
const invalidKmer = Kmer(0xffffffffffffffff)

// kmerAtPos is a forward/reverse-complement kmer pair anchored at a position
// in the sequence being scanned.
type kmerAtPos struct {
	pos                        uint32
	forward, reverseComplement Kmer
}

// canonical returns the lexicographically smaller of the forward and
// reverse-complement encodings, so that a kmer and its reverse complement
// always hash to the same value.
func (km kmerAtPos) canonical() Kmer {
	if km.forward < km.reverseComplement {
		return km.forward
	}
	return km.reverseComplement
}

// kmerizer slides a k-mer window over a byte sequence, skipping past any
// windows that contain a non-ACGT base.
type kmerizer struct {
	kmerLength int
	tmpSeq     []byte
	mask       Kmer // ^(~0 << (2*kmerLength)): the low 2*kmerLength bits

	seq []byte
	si  int
	cur kmerAtPos
}

func newKmerizer(kmerLength int) *kmerizer {
	return &kmerizer{
		kmerLength: kmerLength,
		mask:       ^(Kmer(0xffffffffffffffff) << Kmer(kmerLength*2 /*2==#bits per base*/)),
	}
}

func asciiToKmer(seq []byte) Kmer {
	var k Kmer
	for _, ch := range seq {
		b := asciiToKmerMap[ch]
		if b == invalidKmerBits {
			return invalidKmer
		}
		k = (k << 2) | Kmer(b)
	}
	return k
}

func nextAmbiguousPosition(seq []byte, si int) int {
	for i := si; i < len(seq); i++ {
		if asciiToKmerMap[seq[i]] == invalidKmerBits {
			return i
		}
	}
	return len(seq)
}

// Reset begins a new scan of seq.
func (k *kmerizer) Reset(seq []byte) {
	k.seq = seq
	k.si = 0
}

// Scan advances to the next valid (ambiguity-free) k-mer window and reports
// whether one was found. Get() retrieves the window found by the most
// recent call to Scan that returned true.
func (k *kmerizer) Scan() bool {
	if k.si > 0 /*k.cur is set*/ && k.si+k.kmerLength <= len(k.seq) {
		nextCh := k.seq[k.si+k.kmerLength-1]
		if bits := asciiToKmerMap[nextCh]; bits != invalidKmerBits {
			// Fast path: slide the window by one base, updating the forward and
			// reverse-complement encodings incrementally.
			k.cur.pos = uint32(k.si)
			k.cur.forward = ((k.cur.forward << 2) | Kmer(bits)) & k.mask
			shift := (Kmer(k.kmerLength) - 1) * 2
			k.cur.reverseComplement = (k.cur.reverseComplement >> 2) | (Kmer(asciiToReverseComplementKmerMap[nextCh]) << shift)
			k.si++
			return true
		}
		// Fall through to the slow path below, which will skip past nextCh.
	}

	for k.si+k.kmerLength <= len(k.seq) {
		forward := k.seq[k.si : k.si+k.kmerLength]
		var forwardKmer, reverseKmer Kmer
		if forwardKmer = asciiToKmer(forward); forwardKmer == invalidKmer {
			k.si = nextAmbiguousPosition(k.seq, k.si) + 1
			continue
		}
		simd.ResizeUnsafe(&k.tmpSeq, k.kmerLength)
		biosimd.ReverseComp8NoValidate(k.tmpSeq, forward)
		if reverseKmer = asciiToKmer(k.tmpSeq); reverseKmer == invalidKmer {
			panic("gavisunk: reverse complement of a clean window should never be ambiguous")
		}
		k.cur = kmerAtPos{pos: uint32(k.si), forward: forwardKmer, reverseComplement: reverseKmer}
		k.si++
		return true
	}
	return false
}

// Get returns the window found by the most recent Scan call.
func (k *kmerizer) Get() kmerAtPos { return k.cur }
