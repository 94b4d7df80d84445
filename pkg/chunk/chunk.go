// Package chunk implements the fixed-size, digest-identified erasure
// coded data unit decds operates on, and the proof-carrying envelope
// that makes a chunk self-authenticating against a blob's commitments.
package chunk

import (
	"encoding/binary"

	"github.com/itzmeanjan/decds/pkg/consts"
	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/itzmeanjan/decds/pkg/digest"
	"github.com/itzmeanjan/decds/pkg/merkle"
	"github.com/itzmeanjan/decds/pkg/wire"
)

// chunk is the internal, un-authenticated erasure-coded data unit: one
// of NumCoded RLNC fragments produced from a single chunkset.
type chunk struct {
	chunksetID       int
	chunkID          int
	erasureCodedData []byte
}

func newChunk(chunksetID, chunkID int, erasureCodedData []byte) chunk {
	return chunk{chunksetID: chunksetID, chunkID: chunkID, erasureCodedData: erasureCodedData}
}

// digest computes the leaf hash used to commit this chunk into its
// chunkset's Merkle tree: BLAKE3(chunksetID_le64 || chunkID_le64 || data).
func (c chunk) digest() digest.Hash {
	return Digest(c.chunksetID, c.chunkID, c.erasureCodedData)
}

// Digest computes the leaf hash a chunk with the given identity and
// payload would have. Chunkset construction calls this directly to
// build Merkle leaves before a proof (and therefore a ProofCarryingChunk)
// exists for each chunk.
func Digest(chunksetID, chunkID int, erasureCodedData []byte) digest.Hash {
	var prefix [16]byte
	binary.LittleEndian.PutUint64(prefix[0:8], uint64(chunksetID))
	binary.LittleEndian.PutUint64(prefix[8:16], uint64(chunkID))

	h := digest.NewHasher()
	_, _ = h.Write(prefix[:])
	_, _ = h.Write(erasureCodedData)
	return h.Sum()
}

// ProofCarryingChunk augments a chunk with the Merkle proof required to
// authenticate it against a chunkset's root commitment and, once
// extended by the blob builder, against the blob's root commitment.
type ProofCarryingChunk struct {
	c     chunk
	proof []digest.Hash
}

// New builds a ProofCarryingChunk. proof must have exactly
// consts.ChunksetProofLen elements; callers within this module only
// ever construct one from a freshly generated chunkset-level proof.
func New(chunksetID, chunkID int, erasureCodedData []byte, proof []digest.Hash) ProofCarryingChunk {
	if len(proof) != consts.ChunksetProofLen {
		panic("chunk: proof must have exactly ChunksetProofLen elements at construction")
	}
	return ProofCarryingChunk{c: newChunk(chunksetID, chunkID, erasureCodedData), proof: proof}
}

// ChunksetID returns the chunkset this chunk belongs to.
func (p *ProofCarryingChunk) ChunksetID() int {
	return p.c.chunksetID
}

// ChunkID returns this chunk's global ID (chunksetID*NumCoded + localID).
func (p *ProofCarryingChunk) ChunkID() int {
	return p.c.chunkID
}

// LocalChunkID returns this chunk's index within its chunkset
// (ChunkID() % NumCoded).
func (p *ProofCarryingChunk) LocalChunkID() int {
	return p.c.chunkID % consts.NumCoded
}

// ErasureCodedData returns the RLNC-coded payload carried by this chunk.
func (p *ProofCarryingChunk) ErasureCodedData() []byte {
	return p.c.erasureCodedData
}

// ValidateInclusionInBlob verifies this chunk's full proof against a
// blob's root commitment.
func (p *ProofCarryingChunk) ValidateInclusionInBlob(blobCommitment digest.Hash) bool {
	return merkle.VerifyProof(p.c.chunkID, p.c.digest(), p.proof, blobCommitment)
}

// ValidateInclusionInChunkset verifies only the chunkset-level prefix
// of this chunk's proof against a chunkset's root commitment.
func (p *ProofCarryingChunk) ValidateInclusionInChunkset(chunksetCommitment digest.Hash) bool {
	leafIndex := p.c.chunkID % consts.NumCoded
	return merkle.VerifyProof(leafIndex, p.c.digest(), p.proof[:consts.ChunksetProofLen], chunksetCommitment)
}

// ChunksetByteRanger is the slice of blob.Header's API BlobByteRange
// needs. Accepting this instead of a concrete *blob.Header lets
// chunk stay independent of the blob package, which already imports
// chunk.
type ChunksetByteRanger interface {
	ByteRangeForChunkset(chunksetID int) (start, end int, err error)
}

// BlobByteRange returns this chunk's chunkset's [start, end) byte range
// within the unpadded blob, recovering the original implementation's
// offset-based ergonomics (its Chunk.offset field and
// get_blob_byte_range() method) without adding an offset to the wire
// schema: the range is derived from header on demand rather than
// serialized.
func (p *ProofCarryingChunk) BlobByteRange(header ChunksetByteRanger) (start, end int, err error) {
	return header.ByteRangeForChunkset(p.c.chunksetID)
}

// AppendProofToBlobRoot extends this chunk's chunkset-level proof with
// the blob-level sibling path from the chunkset's root to the blob's
// root, turning it into a full blob-inclusion proof.
func (p *ProofCarryingChunk) AppendProofToBlobRoot(blobProof []digest.Hash) {
	if len(blobProof) > 0 {
		p.proof = append(p.proof, blobProof...)
	}
}

// ToBytes serializes the chunk in the canonical wire format: chunkset
// ID, chunk ID, length-prefixed data, then a varint-length-prefixed
// vector of 32-byte proof hashes.
func (p *ProofCarryingChunk) ToBytes() []byte {
	buf := make([]byte, 0, 32+len(p.c.erasureCodedData)+len(p.proof)*digest.Size)
	buf = wire.PutUvarint(buf, uint64(p.c.chunksetID))
	buf = wire.PutUvarint(buf, uint64(p.c.chunkID))
	buf = wire.PutBytes(buf, p.c.erasureCodedData)
	buf = wire.PutUvarint(buf, uint64(len(p.proof)))
	for _, h := range p.proof {
		buf = wire.PutHash(buf, [32]byte(h))
	}
	return buf
}

// FromBytes deserializes a ProofCarryingChunk, returning the number of
// bytes consumed so callers can detect trailing-byte protocol errors.
func FromBytes(buf []byte) (ProofCarryingChunk, int, error) {
	var offset int

	chunksetID, n, err := wire.Uvarint(buf[offset:])
	if err != nil {
		return ProofCarryingChunk{}, 0, decdserr.ProofCarryingChunkDeserializationFailed(err.Error())
	}
	offset += n

	chunkID, n, err := wire.Uvarint(buf[offset:])
	if err != nil {
		return ProofCarryingChunk{}, 0, decdserr.ProofCarryingChunkDeserializationFailed(err.Error())
	}
	offset += n

	data, n, err := wire.Bytes(buf[offset:])
	if err != nil {
		return ProofCarryingChunk{}, 0, decdserr.ProofCarryingChunkDeserializationFailed(err.Error())
	}
	offset += n

	proofLen, n, err := wire.Uvarint(buf[offset:])
	if err != nil {
		return ProofCarryingChunk{}, 0, decdserr.ProofCarryingChunkDeserializationFailed(err.Error())
	}
	offset += n

	proof := make([]digest.Hash, proofLen)
	for i := range proof {
		h, n, err := wire.Hash(buf[offset:])
		if err != nil {
			return ProofCarryingChunk{}, 0, decdserr.ProofCarryingChunkDeserializationFailed(err.Error())
		}
		proof[i] = digest.Hash(h)
		offset += n
	}

	pcc := ProofCarryingChunk{
		c:     newChunk(int(chunksetID), int(chunkID), data),
		proof: proof,
	}
	return pcc, offset, nil
}
