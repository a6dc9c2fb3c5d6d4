// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package biosimd provides byte-array operations on raw nucleotide
// sequences: cleaning, ACGT validation, and reverse-complementing. It is
// deliberately pure Go (no platform-specific backends) since the pipeline's
// k-mer windows are short enough that auto-vectorization is not the
// bottleneck.
package biosimd
