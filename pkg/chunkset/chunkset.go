// Package chunkset implements the 10 MiB coding unit decds stripes a
// blob into: a ChunkSet RLNC-encodes one chunkset's worth of data into
// NumCoded proof-carrying chunks committed by a Merkle tree, and a
// RepairingChunkSet incrementally decodes a chunkset back from any
// NumOriginal linearly independent chunks it receives.
package chunkset

import (
	"math/rand"

	"github.com/itzmeanjan/decds/pkg/chunk"
	"github.com/itzmeanjan/decds/pkg/consts"
	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/itzmeanjan/decds/pkg/digest"
	"github.com/itzmeanjan/decds/pkg/merkle"
	"github.com/itzmeanjan/decds/pkg/rlnc"
)

// paddedChunkByteLen is the per-piece byte length RLNC operates on:
// ChunksetSize data plus one end-of-data marker byte, divided evenly
// across NumOriginal pieces.
const paddedChunkByteLen = (consts.ChunksetSize + 1 + consts.NumOriginal - 1) / consts.NumOriginal

// ChunkSet is the build-side representation of one 10 MiB coding unit:
// its Merkle commitment and its NumCoded proof-carrying chunks.
type ChunkSet struct {
	commitment digest.Hash
	chunks     []chunk.ProofCarryingChunk
}

// New RLNC-encodes data (which must be exactly consts.ChunksetSize
// bytes) into NumCoded chunks, commits them with a Merkle tree, and
// returns the resulting ChunkSet. coeffSrc supplies the coefficient
// randomness for every coded fragment; blob.New passes a math/rand
// generator seeded from the global source, tests pass a fixed-seed
// *rand.Rand for reproducibility.
func New(chunksetID int, data []byte, coeffSrc *rand.Rand) (*ChunkSet, error) {
	if len(data) != consts.ChunksetSize {
		return nil, decdserr.InvalidChunksetSize(len(data))
	}

	encoder, err := rlnc.NewEncoder(data, consts.NumOriginal)
	if err != nil {
		return nil, err
	}

	type built struct {
		chunkID int
		coded   []byte
	}
	raw := make([]built, consts.NumCoded)
	leaves := make([]digest.Hash, consts.NumCoded)

	for i := 0; i < consts.NumCoded; i++ {
		chunkID := chunksetID*consts.NumCoded + i
		coded, err := encoder.Code(coeffSrc)
		if err != nil {
			return nil, err
		}
		raw[i] = built{chunkID: chunkID, coded: coded}
		leaves[i] = chunk.Digest(chunksetID, chunkID, coded)
	}

	tree, err := merkle.Build(leaves)
	if err != nil {
		return nil, err
	}
	commitment := tree.RootCommitment()

	chunks := make([]chunk.ProofCarryingChunk, consts.NumCoded)
	for i := 0; i < consts.NumCoded; i++ {
		proof, err := tree.GenerateProof(i)
		if err != nil {
			return nil, err
		}
		chunks[i] = chunk.New(chunksetID, raw[i].chunkID, raw[i].coded, proof)
	}

	return &ChunkSet{commitment: commitment, chunks: chunks}, nil
}

// RootCommitment returns this chunkset's Merkle root commitment.
func (cs *ChunkSet) RootCommitment() digest.Hash {
	return cs.commitment
}

// Chunk returns the local-ID'd chunk within this chunkset.
func (cs *ChunkSet) Chunk(localID int) (*chunk.ProofCarryingChunk, error) {
	if localID < 0 || localID >= len(cs.chunks) {
		return nil, decdserr.InvalidErasureCodedShareId(localID)
	}
	return &cs.chunks[localID], nil
}

// AppendBlobInclusionProof extends every chunk's proof with the
// blob-level sibling path from this chunkset's root to the blob root.
func (cs *ChunkSet) AppendBlobInclusionProof(blobProof []digest.Hash) {
	if len(blobProof) == 0 {
		return
	}
	for i := range cs.chunks {
		cs.chunks[i].AppendProofToBlobRoot(blobProof)
	}
}

// RepairingChunkSet incrementally reconstructs one chunkset's original
// data from a stream of incoming proof-carrying chunks.
type RepairingChunkSet struct {
	chunksetID int
	commitment digest.Hash
	decoder    *rlnc.Decoder
}

// NewRepairingChunkSet returns an empty RepairingChunkSet expecting
// chunks for chunksetID, authenticated against commitment.
func NewRepairingChunkSet(chunksetID int, commitment digest.Hash) *RepairingChunkSet {
	decoder, err := rlnc.NewDecoder(paddedChunkByteLen, consts.NumOriginal)
	if err != nil {
		// consts.NumOriginal is a positive compile-time constant; this
		// can never fail.
		panic(err)
	}
	return &RepairingChunkSet{chunksetID: chunksetID, commitment: commitment, decoder: decoder}
}

// AddChunk validates c's inclusion proof against this chunkset's
// expected commitment before absorbing it.
func (r *RepairingChunkSet) AddChunk(c *chunk.ProofCarryingChunk) error {
	if !c.ValidateInclusionInChunkset(r.commitment) {
		return decdserr.InvalidProofInChunk(c.ChunksetID())
	}
	return r.AddChunkUnvalidated(c)
}

// AddChunkUnvalidated absorbs c without checking its Merkle proof,
// for callers that have already validated it (e.g. against a blob
// header, which additionally checks chunkset membership).
func (r *RepairingChunkSet) AddChunkUnvalidated(c *chunk.ProofCarryingChunk) error {
	if r.chunksetID != c.ChunksetID() {
		return decdserr.InvalidChunkMetadata(c.ChunksetID())
	}
	if r.IsReadyToRepair() {
		return decdserr.ChunksetReadyToRepair(r.chunksetID)
	}

	if err := r.decoder.Decode(c.ErasureCodedData()); err != nil {
		return decdserr.ChunkDecodingFailed(c.ChunksetID(), err.Error())
	}
	return nil
}

// IsReadyToRepair reports whether enough independent chunks have been
// absorbed to reconstruct the chunkset's original data.
func (r *RepairingChunkSet) IsReadyToRepair() bool {
	return r.decoder.IsFullRank()
}

// Repair reconstructs and returns the chunkset's full consts.ChunksetSize
// bytes of data, with the RLNC end-of-data marker removed but any
// blob-level zero padding of a short last chunkset still present
// (blob.RepairingBlob truncates that). The RepairingChunkSet should not
// be used again afterward.
func (r *RepairingChunkSet) Repair() ([]byte, error) {
	if !r.IsReadyToRepair() {
		return nil, decdserr.ChunksetNotYetReadyToRepair(r.chunksetID)
	}
	data, err := r.decoder.GetDecodedData()
	if err != nil {
		return nil, decdserr.ChunksetRepairingFailed(r.chunksetID, err.Error())
	}
	return data, nil
}
