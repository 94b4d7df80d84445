package merkle_test

import (
	"math/rand"
	"testing"

	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/itzmeanjan/decds/pkg/digest"
	"github.com/itzmeanjan/decds/pkg/merkle"
	"github.com/stretchr/testify/require"
)

func randomLeaves(n int, rng *rand.Rand) []digest.Hash {
	leaves := make([]digest.Hash, n)
	for i := range leaves {
		buf := make([]byte, 32)
		rng.Read(buf)
		leaves[i] = digest.Sum(buf)
	}
	return leaves
}

func TestBuildEmptyFails(t *testing.T) {
	_, err := merkle.Build(nil)
	require.Error(t, err)
	var derr *decdserr.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, decdserr.KindNoLeafNodesToBuildMerkleTreeOn, derr.Kind())
}

func TestSingleLeafRootIsLeaf(t *testing.T) {
	leaf := digest.Sum([]byte("hello"))
	tree, err := merkle.Build([]digest.Hash{leaf})
	require.NoError(t, err)
	require.Equal(t, leaf, tree.RootCommitment())

	proof, err := tree.GenerateProof(0)
	require.NoError(t, err)
	require.Empty(t, proof)
	require.True(t, merkle.VerifyProof(0, leaf, proof, tree.RootCommitment()))
}

func TestTwoLeaves(t *testing.T) {
	leaf1 := digest.Sum([]byte("first"))
	leaf2 := digest.Sum([]byte("second"))
	tree, err := merkle.Build([]digest.Hash{leaf1, leaf2})
	require.NoError(t, err)

	proof1, err := tree.GenerateProof(0)
	require.NoError(t, err)
	require.Equal(t, []digest.Hash{leaf2}, proof1)
	require.True(t, merkle.VerifyProof(0, leaf1, proof1, tree.RootCommitment()))

	proof2, err := tree.GenerateProof(1)
	require.NoError(t, err)
	require.Equal(t, []digest.Hash{leaf1}, proof2)
	require.True(t, merkle.VerifyProof(1, leaf2, proof2, tree.RootCommitment()))

	require.False(t, merkle.VerifyProof(0, leaf1, []digest.Hash{digest.Sum([]byte("fake"))}, tree.RootCommitment()))
	require.False(t, merkle.VerifyProof(0, digest.Sum([]byte("tampered")), proof1, tree.RootCommitment()))
}

func TestGenerateProofOutOfBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tree, err := merkle.Build(randomLeaves(5, rng))
	require.NoError(t, err)

	_, err = tree.GenerateProof(5)
	require.Error(t, err)
	var derr *decdserr.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, decdserr.KindInvalidLeafNodeIndex, derr.Kind())
}

func TestPropertyRoundTripAndTamper(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 10; iter++ {
		leafCount := 1 + rng.Intn(2000)
		leaves := randomLeaves(leafCount, rng)

		tree, err := merkle.Build(leaves)
		require.NoError(t, err)
		root := tree.RootCommitment()

		for leafIndex, leaf := range leaves {
			proof, err := tree.GenerateProof(leafIndex)
			require.NoError(t, err)
			require.True(t, merkle.VerifyProof(leafIndex, leaf, proof, root))

			if len(proof) == 0 {
				continue
			}
			tampered := append([]digest.Hash(nil), proof...)
			idx := rng.Intn(len(tampered))
			tampered[idx][0] ^= 1 << uint(rng.Intn(8))
			require.False(t, merkle.VerifyProof(leafIndex, leaf, tampered, root))
		}
	}
}
