// Package blob implements the top-level assembler and repairer: it
// stripes a blob's bytes across fixed-size chunksets, commits them with
// a blob-level Merkle tree over the chunkset roots, and drives
// incremental, chunkset-at-a-time repair from a stream of received
// proof-carrying chunks.
package blob

import (
	"github.com/itzmeanjan/decds/pkg/chunk"
	"github.com/itzmeanjan/decds/pkg/consts"
	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/itzmeanjan/decds/pkg/digest"
	"github.com/itzmeanjan/decds/pkg/wire"
)

// Header carries everything needed to validate and repair a blob
// without the blob's body: its size, chunkset count, digest, and the
// root commitments of the blob-level and every chunkset-level Merkle
// tree. A Header is immutable once produced.
type Header struct {
	byteLength              int
	numChunksets            int
	digest                  digest.Hash
	rootCommitment          digest.Hash
	chunksetRootCommitments []digest.Hash
}

// BlobSize returns the original, unpadded byte length of the blob.
func (h *Header) BlobSize() int {
	return h.byteLength
}

// NumChunksets returns the number of chunksets the blob is striped
// across.
func (h *Header) NumChunksets() int {
	return h.numChunksets
}

// NumChunks returns the total number of erasure-coded chunks across
// every chunkset in the blob.
func (h *Header) NumChunks() int {
	return h.numChunksets * consts.NumCoded
}

// Digest returns the BLAKE3 digest of the original, unpadded blob data.
func (h *Header) Digest() digest.Hash {
	return h.digest
}

// RootCommitment returns the blob-level Merkle root commitment.
func (h *Header) RootCommitment() digest.Hash {
	return h.rootCommitment
}

// ChunksetCommitment returns the Merkle root commitment of a specific
// chunkset.
func (h *Header) ChunksetCommitment(chunksetID int) (digest.Hash, error) {
	if chunksetID < 0 || chunksetID >= h.numChunksets {
		return digest.Hash{}, decdserr.InvalidChunksetId(chunksetID, h.numChunksets)
	}
	return h.chunksetRootCommitments[chunksetID], nil
}

// ChunksetSize returns the effective byte length of a chunkset,
// accounting for the last chunkset potentially holding less than a
// full consts.ChunksetSize bytes of real data.
func (h *Header) ChunksetSize(chunksetID int) (int, error) {
	if chunksetID < 0 || chunksetID >= h.numChunksets {
		return 0, decdserr.InvalidChunksetId(chunksetID, h.numChunksets)
	}
	from := chunksetID * consts.ChunksetSize
	to := from + consts.ChunksetSize
	if to > h.byteLength {
		to = h.byteLength
	}
	return to - from, nil
}

// ByteRangeForChunkset returns the [start, end) byte range a chunkset
// occupies in the original, unpadded blob data; the last chunkset's
// range ends at BlobSize().
func (h *Header) ByteRangeForChunkset(chunksetID int) (start, end int, err error) {
	if chunksetID < 0 || chunksetID >= h.numChunksets {
		return 0, 0, decdserr.InvalidChunksetId(chunksetID, h.numChunksets)
	}
	from := chunksetID * consts.ChunksetSize
	to := from + consts.ChunksetSize
	if to > h.byteLength {
		to = h.byteLength
	}
	return from, to, nil
}

// ChunksetIDsForByteRange returns the IDs of every chunkset overlapping
// the half-open byte range described by start (inclusive, or -1 for
// unbounded, meaning 0) and end (exclusive; pass -1 for unbounded,
// meaning the blob's end).
//
// This carries over an asymmetry from the reference implementation: an
// Excluded end bound is translated to `end-1` before dividing by
// ChunksetSize, using the same full chunkset stride even for the last,
// possibly short, chunkset. The end bound is therefore checked against
// the padded length NumChunksets()*ChunksetSize, not against
// BlobSize(): an end that falls in the zero-padded tail of the last
// chunkset, past BlobSize(), is accepted and reports that last
// chunkset, and only an end beyond the padded length fails with
// InvalidChunksetId. An end equal to BlobSize() always maps to the last
// chunkset.
func (h *Header) ChunksetIDsForByteRange(start, end int) ([]int, error) {
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = h.byteLength
	}
	if end == 0 {
		return nil, decdserr.InvalidEndBound(end)
	}
	inclusiveEnd := end - 1

	startChunksetID := start / consts.ChunksetSize
	endChunksetID := inclusiveEnd / consts.ChunksetSize

	if endChunksetID >= h.numChunksets {
		return nil, decdserr.InvalidChunksetId(endChunksetID, h.numChunksets)
	}

	ids := make([]int, 0, endChunksetID-startChunksetID+1)
	for id := startChunksetID; id <= endChunksetID; id++ {
		ids = append(ids, id)
	}
	return ids, nil
}

// ValidateChunk reports whether c is authentic: its proof verifies
// against both this header's blob root commitment and the commitment
// of the chunkset it claims to belong to.
func (h *Header) ValidateChunk(c *chunk.ProofCarryingChunk) bool {
	if c.ChunksetID() < 0 || c.ChunksetID() >= h.numChunksets {
		return false
	}
	return c.ValidateInclusionInBlob(h.rootCommitment) &&
		c.ValidateInclusionInChunkset(h.chunksetRootCommitments[c.ChunksetID()])
}

// ToBytes serializes the header in the canonical wire format.
func (h *Header) ToBytes() []byte {
	buf := make([]byte, 0, 64+len(h.chunksetRootCommitments)*digest.Size)
	buf = wire.PutUvarint(buf, uint64(h.byteLength))
	buf = wire.PutUvarint(buf, uint64(h.numChunksets))
	buf = wire.PutHash(buf, [32]byte(h.digest))
	buf = wire.PutHash(buf, [32]byte(h.rootCommitment))
	buf = wire.PutUvarint(buf, uint64(len(h.chunksetRootCommitments)))
	for _, c := range h.chunksetRootCommitments {
		buf = wire.PutHash(buf, [32]byte(c))
	}
	return buf
}

// HeaderFromBytes deserializes a Header, returning the number of bytes
// consumed. It fails if the declared chunkset count does not match the
// number of chunkset root commitments actually present.
func HeaderFromBytes(buf []byte) (*Header, int, error) {
	var offset int

	byteLength, n, err := wire.Uvarint(buf[offset:])
	if err != nil {
		return nil, 0, decdserr.BlobHeaderDeserializationFailed(err.Error())
	}
	offset += n

	numChunksets, n, err := wire.Uvarint(buf[offset:])
	if err != nil {
		return nil, 0, decdserr.BlobHeaderDeserializationFailed(err.Error())
	}
	offset += n

	blobDigest, n, err := wire.Hash(buf[offset:])
	if err != nil {
		return nil, 0, decdserr.BlobHeaderDeserializationFailed(err.Error())
	}
	offset += n

	root, n, err := wire.Hash(buf[offset:])
	if err != nil {
		return nil, 0, decdserr.BlobHeaderDeserializationFailed(err.Error())
	}
	offset += n

	numCommitments, n, err := wire.Uvarint(buf[offset:])
	if err != nil {
		return nil, 0, decdserr.BlobHeaderDeserializationFailed(err.Error())
	}
	offset += n

	commitments := make([]digest.Hash, numCommitments)
	for i := range commitments {
		c, n, err := wire.Hash(buf[offset:])
		if err != nil {
			return nil, 0, decdserr.BlobHeaderDeserializationFailed(err.Error())
		}
		commitments[i] = digest.Hash(c)
		offset += n
	}

	if uint64(numChunksets) != uint64(len(commitments)) {
		return nil, 0, decdserr.BlobHeaderDeserializationFailed("number of chunksets and root commitments do not match")
	}

	header := &Header{
		byteLength:              int(byteLength),
		numChunksets:            int(numChunksets),
		digest:                  digest.Hash(blobDigest),
		rootCommitment:          digest.Hash(root),
		chunksetRootCommitments: commitments,
	}
	return header, offset, nil
}
