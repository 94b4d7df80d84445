// Package consts holds the fixed structural parameters shared by every
// decds package: chunk and chunkset sizing, and the erasure coding
// fanout.
package consts

const (
	// ChunkSize is the size, in bytes, of one unpadded source piece
	// before erasure coding: 1 MiB.
	ChunkSize = 1 << 20

	// NumOriginal is the number of source pieces a chunkset's data is
	// split into before RLNC encoding.
	NumOriginal = 10

	// NumCoded is the number of RLNC-coded shares produced per
	// chunkset, and the erasure coding fanout of the whole scheme.
	NumCoded = 16

	// ChunksetSize is the amount of original blob data one chunkset
	// commits to: 10 MiB.
	ChunksetSize = NumOriginal * ChunkSize

	// ChunksetProofLen is ceil(log2(NumCoded)), the fixed proof length
	// for the chunkset-level Merkle tree.
	ChunksetProofLen = 4
)
