// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd

var revComp8Table = [256]byte{}

func init() {
	for i := range revComp8Table {
		revComp8Table[i] = 'N'
	}
	revComp8Table['A'], revComp8Table['a'] = 'T', 'T'
	revComp8Table['C'], revComp8Table['c'] = 'G', 'G'
	revComp8Table['G'], revComp8Table['g'] = 'C', 'C'
	revComp8Table['T'], revComp8Table['t'] = 'A', 'A'
}

// ReverseComp8Inplace reverse-complements ascii8[] in place, assuming ASCII
// encoding. It maps 'A'/'a' to 'T', 'C'/'c' to 'G', 'G'/'g' to 'C', 'T'/'t'
// to 'A', and everything else to 'N'.
func ReverseComp8Inplace(ascii8 []byte) {
	nByte := len(ascii8)
	nByteDiv2 := nByte >> 1
	for idx, invIdx := 0, nByte-1; idx != nByteDiv2; idx, invIdx = idx+1, invIdx-1 {
		ascii8[idx], ascii8[invIdx] = revComp8Table[ascii8[invIdx]], revComp8Table[ascii8[idx]]
	}
	if nByte&1 == 1 {
		ascii8[nByteDiv2] = revComp8Table[ascii8[nByteDiv2]]
	}
}

// ReverseComp8NoValidate writes the reverse-complement of src[] to dst[],
// assuming src only contains bytes in {A,C,G,T,N,a,c,g,t,n}. It panics if
// len(dst) != len(src).
func ReverseComp8NoValidate(dst, src []byte) {
	nByte := len(src)
	if len(dst) != nByte {
		panic("ReverseComp8NoValidate requires len(dst) == len(src)")
	}
	for idx, invIdx := 0, nByte-1; idx != nByte; idx, invIdx = idx+1, invIdx-1 {
		dst[idx] = revComp8Table[src[invIdx]]
	}
}

// CleanASCIISeqInplace replaces every byte that isn't an upper/lowercase
// A/C/G/T with 'N', and capitalizes a/c/g/t in place.
func CleanASCIISeqInplace(ascii8 []byte) {
	for i, b := range ascii8 {
		switch b {
		case 'A', 'C', 'G', 'T':
		case 'a':
			ascii8[i] = 'A'
		case 'c':
			ascii8[i] = 'C'
		case 'g':
			ascii8[i] = 'G'
		case 't':
			ascii8[i] = 'T'
		default:
			ascii8[i] = 'N'
		}
	}
}

// IsNonACGTPresent reports whether ascii8[] contains any byte other than
// upper/lowercase A/C/G/T.
func IsNonACGTPresent(ascii8 []byte) bool {
	for _, b := range ascii8 {
		switch b {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		default:
			return true
		}
	}
	return false
}
