package blob

import (
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/itzmeanjan/decds/pkg/chunk"
	"github.com/itzmeanjan/decds/pkg/chunkset"
	"github.com/itzmeanjan/decds/pkg/consts"
	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/itzmeanjan/decds/pkg/digest"
	"github.com/itzmeanjan/decds/pkg/merkle"
)

// Blob is a complete, erasure-coded representation of one byte slice:
// a Header plus the NumChunksets ChunkSets backing it.
type Blob struct {
	header *Header
	body   []*chunkset.ChunkSet
}

// New erasure-codes data into a Blob. The build fans out across
// chunksets using errgroup, matching the concurrency boundary described
// for the build path: embarrassingly parallel, joined before the
// blob-level Merkle tree (which needs every chunkset's commitment) is
// built.
func New(data []byte) (*Blob, error) {
	if len(data) == 0 {
		return nil, decdserr.EmptyDataForBlob()
	}

	blobDigest := digest.Sum(data)
	blobLength := len(data)

	numChunksets := ceilDiv(blobLength, consts.ChunksetSize)
	paddedLen := numChunksets * consts.ChunksetSize
	padded := make([]byte, paddedLen)
	copy(padded, data)

	chunksets := make([]*chunkset.ChunkSet, numChunksets)
	var eg errgroup.Group
	for i := 0; i < numChunksets; i++ {
		i := i
		eg.Go(func() error {
			from := i * consts.ChunksetSize
			till := from + consts.ChunksetSize
			// Each chunkset gets its own PRNG so concurrent goroutines
			// never share mutable RNG state.
			rng := rand.New(rand.NewSource(rand.Int63()))
			cs, err := chunkset.New(i, padded[from:till], rng)
			if err != nil {
				return err
			}
			chunksets[i] = cs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	leaves := make([]digest.Hash, numChunksets)
	for i, cs := range chunksets {
		leaves[i] = cs.RootCommitment()
	}
	tree, err := merkle.Build(leaves)
	if err != nil {
		return nil, err
	}
	rootCommitment := tree.RootCommitment()

	var eg2 errgroup.Group
	for i := range chunksets {
		i := i
		eg2.Go(func() error {
			proof, err := tree.GenerateProof(i)
			if err != nil {
				return err
			}
			chunksets[i].AppendBlobInclusionProof(proof)
			return nil
		})
	}
	if err := eg2.Wait(); err != nil {
		return nil, err
	}

	chunksetRoots := make([]digest.Hash, numChunksets)
	for i, cs := range chunksets {
		chunksetRoots[i] = cs.RootCommitment()
	}

	header := &Header{
		byteLength:              blobLength,
		numChunksets:            numChunksets,
		digest:                  blobDigest,
		rootCommitment:          rootCommitment,
		chunksetRootCommitments: chunksetRoots,
	}

	return &Blob{header: header, body: chunksets}, nil
}

// Header returns the blob's header.
func (b *Blob) Header() *Header {
	return b.header
}

// GetShare returns the vertical slice of one proof-carrying chunk per
// chunkset at local share ID shareID — the set of fragments a single
// storage node holding "share shareID" would keep.
func (b *Blob) GetShare(shareID int) ([]chunk.ProofCarryingChunk, error) {
	if shareID < 0 || shareID >= consts.NumCoded {
		return nil, decdserr.InvalidErasureCodedShareId(shareID)
	}

	shares := make([]chunk.ProofCarryingChunk, b.header.numChunksets)
	for chunksetID := 0; chunksetID < b.header.numChunksets; chunksetID++ {
		c, err := b.body[chunksetID].Chunk(shareID)
		if err != nil {
			return nil, err
		}
		shares[chunksetID] = *c
	}
	return shares, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
