package blob_test

import (
	"math/rand"
	"testing"

	"github.com/itzmeanjan/decds/pkg/blob"
	"github.com/itzmeanjan/decds/pkg/consts"
	"github.com/stretchr/testify/require"
)

func TestHeaderToBytesFromBytesRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := make([]byte, 3*consts.ChunksetSize+17)
	rng.Read(data)

	b, err := blob.New(data)
	require.NoError(t, err)
	h := b.Header()

	buf := h.ToBytes()
	decoded, n, err := blob.HeaderFromBytes(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)

	require.Equal(t, h.BlobSize(), decoded.BlobSize())
	require.Equal(t, h.NumChunksets(), decoded.NumChunksets())
	require.Equal(t, h.Digest(), decoded.Digest())
	require.Equal(t, h.RootCommitment(), decoded.RootCommitment())

	for i := 0; i < h.NumChunksets(); i++ {
		want, err := h.ChunksetCommitment(i)
		require.NoError(t, err)
		got, err := decoded.ChunksetCommitment(i)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestChunkBlobByteRangeAgainstRealHeader(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, 2*consts.ChunksetSize+5)
	rng.Read(data)

	b, err := blob.New(data)
	require.NoError(t, err)
	h := b.Header()

	shares, err := b.GetShare(0)
	require.NoError(t, err)

	for _, c := range shares {
		wantStart, wantEnd, err := h.ByteRangeForChunkset(c.ChunksetID())
		require.NoError(t, err)

		gotStart, gotEnd, err := c.BlobByteRange(h)
		require.NoError(t, err)
		require.Equal(t, wantStart, gotStart)
		require.Equal(t, wantEnd, gotEnd)
	}
}

func TestByteRangeForChunksetOutOfBounds(t *testing.T) {
	b, err := blob.New([]byte("x"))
	require.NoError(t, err)
	h := b.Header()

	_, _, err = h.ByteRangeForChunkset(1)
	require.Error(t, err)

	_, err = h.ChunksetCommitment(-1)
	require.Error(t, err)
}

func TestChunksetIDsForByteRangeWithinOneChunkset(t *testing.T) {
	b, err := blob.New(make([]byte, consts.ChunksetSize))
	require.NoError(t, err)
	h := b.Header()

	ids, err := h.ChunksetIDsForByteRange(0, 10)
	require.NoError(t, err)
	require.Equal(t, []int{0}, ids)
}

func TestChunksetIDsForByteRangeSpanningBoundary(t *testing.T) {
	b, err := blob.New(make([]byte, 2*consts.ChunksetSize))
	require.NoError(t, err)
	h := b.Header()

	ids, err := h.ChunksetIDsForByteRange(consts.ChunksetSize-1, consts.ChunksetSize+1)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, ids)
}

func TestChunksetIDsForByteRangeRejectsOutOfBoundsEnd(t *testing.T) {
	b, err := blob.New(make([]byte, consts.ChunksetSize))
	require.NoError(t, err)
	h := b.Header()

	_, err = h.ChunksetIDsForByteRange(0, 2*consts.ChunksetSize)
	require.Error(t, err)
}
