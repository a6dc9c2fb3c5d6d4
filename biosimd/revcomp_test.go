// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koisland/gavisunk/biosimd"
)

func TestReverseComp8Inplace(t *testing.T) {
	seq := []byte("ACGTacgtN")
	biosimd.ReverseComp8Inplace(seq)
	require.Equal(t, "NACGTACGT", string(seq))
}

func TestReverseComp8NoValidate(t *testing.T) {
	src := []byte("ACGT")
	dst := make([]byte, len(src))
	biosimd.ReverseComp8NoValidate(dst, src)
	require.Equal(t, "ACGT", string(dst))
}

func TestCleanASCIISeqInplace(t *testing.T) {
	seq := []byte("acgtNxACGT")
	biosimd.CleanASCIISeqInplace(seq)
	require.Equal(t, "ACGTNNACGT", string(seq))
}

func TestIsNonACGTPresent(t *testing.T) {
	require.False(t, biosimd.IsNonACGTPresent([]byte("ACGTacgt")))
	require.True(t, biosimd.IsNonACGTPresent([]byte("ACGTN")))
}
