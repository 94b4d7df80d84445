package blob_test

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/itzmeanjan/decds/pkg/blob"
	"github.com/itzmeanjan/decds/pkg/chunk"
	"github.com/itzmeanjan/decds/pkg/consts"
	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyData(t *testing.T) {
	_, err := blob.New(nil)
	require.Error(t, err)
}

func TestSmallBlobSingleChunkset(t *testing.T) {
	data := []byte("hello")
	b, err := blob.New(data)
	require.NoError(t, err)

	h := b.Header()
	require.Equal(t, len(data), h.BlobSize())
	require.Equal(t, 1, h.NumChunksets())
	require.Equal(t, consts.NumCoded, h.NumChunks())

	for shareID := 0; shareID < consts.NumCoded; shareID++ {
		shares, err := b.GetShare(shareID)
		require.NoError(t, err)
		require.Len(t, shares, 1)
		require.True(t, h.ValidateChunk(&shares[0]))
	}
}

func TestTwoChunksetBlobJustOverOneBoundary(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	data := make([]byte, consts.ChunksetSize+1)
	rng.Read(data)

	b, err := blob.New(data)
	require.NoError(t, err)
	h := b.Header()
	require.Equal(t, 2, h.NumChunksets())

	size0, err := h.ChunksetSize(0)
	require.NoError(t, err)
	require.Equal(t, consts.ChunksetSize, size0)

	size1, err := h.ChunksetSize(1)
	require.NoError(t, err)
	require.Equal(t, 1, size1)

	for shareID := 0; shareID < consts.NumCoded; shareID++ {
		shares, err := b.GetShare(shareID)
		require.NoError(t, err)
		for i := range shares {
			require.True(t, h.ValidateChunk(&shares[i]))
		}
	}
}

func TestFullRoundTripRepairWithShuffledShares(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	data := make([]byte, 4*consts.ChunksetSize)
	rng.Read(data)

	b, err := blob.New(data)
	require.NoError(t, err)
	h := b.Header()
	require.Equal(t, 4, h.NumChunksets())

	var allChunks []chunk.ProofCarryingChunk
	for shareID := 0; shareID < consts.NumCoded; shareID++ {
		shares, err := b.GetShare(shareID)
		require.NoError(t, err)
		allChunks = append(allChunks, shares...)
	}
	rng.Shuffle(len(allChunks), func(i, j int) { allChunks[i], allChunks[j] = allChunks[j], allChunks[i] })

	rb := blob.NewRepairingBlob(h)
	for i := range allChunks {
		err := rb.AddChunk(&allChunks[i])
		require.True(t, err == nil || isIgnorable(err))
	}

	var reconstructed bytes.Buffer
	for cs := 0; cs < h.NumChunksets(); cs++ {
		ready, err := rb.IsChunksetReadyToRepair(cs)
		require.NoError(t, err)
		require.True(t, ready)

		repaired, err := rb.GetRepairedChunkset(cs)
		require.NoError(t, err)
		reconstructed.Write(repaired)

		_, err = rb.GetRepairedChunkset(cs)
		require.Error(t, err)
		var derr *decdserr.Error
		require.ErrorAs(t, err, &derr)
		require.Equal(t, decdserr.KindChunksetAlreadyRepaired, derr.Kind())
	}

	require.Equal(t, data, reconstructed.Bytes())
}

func TestBitFlippedFragmentRejected(t *testing.T) {
	rng := rand.New(rand.NewSource(55))
	data := make([]byte, consts.ChunksetSize)
	rng.Read(data)

	b, err := blob.New(data)
	require.NoError(t, err)
	h := b.Header()

	shares, err := b.GetShare(0)
	require.NoError(t, err)
	tampered := shares[0]
	buf := tampered.ToBytes()
	buf[len(buf)-1] ^= 0xFF
	decoded, _, err := chunk.FromBytes(buf)
	require.NoError(t, err)

	require.False(t, h.ValidateChunk(&decoded))

	rb := blob.NewRepairingBlob(h)
	err = rb.AddChunk(&decoded)
	require.Error(t, err)
}

func TestInsufficientFragmentsNotReady(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	data := make([]byte, consts.ChunksetSize)
	rng.Read(data)

	b, err := blob.New(data)
	require.NoError(t, err)
	h := b.Header()

	rb := blob.NewRepairingBlob(h)
	for shareID := 0; shareID < consts.NumOriginal-1; shareID++ {
		shares, err := b.GetShare(shareID)
		require.NoError(t, err)
		require.NoError(t, rb.AddChunk(&shares[0]))
	}

	ready, err := rb.IsChunksetReadyToRepair(0)
	require.NoError(t, err)
	require.False(t, ready)

	_, err = rb.GetRepairedChunkset(0)
	require.Error(t, err)
}

func TestCorruptedHeaderRoundTripFails(t *testing.T) {
	data := []byte("some blob content")
	b, err := blob.New(data)
	require.NoError(t, err)

	buf := b.Header().ToBytes()
	buf[10] ^= 0xFF

	decoded, _, err := blob.HeaderFromBytes(buf)
	// Either the bincode-shaped decode itself fails, or it decodes into
	// a header that differs from the original (byte 10 lies inside the
	// digest field, which the decoder cannot check on its own). Accept
	// either: decoding must not silently succeed with a header equal to
	// the original.
	if err == nil {
		require.NotEqual(t, b.Header(), decoded, "corrupted header bytes decoded into a header equal to the original")
	}
}

func TestStreamReaderConcatenatesChunksets(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	data := make([]byte, 2*consts.ChunksetSize+123)
	rng.Read(data)

	b, err := blob.New(data)
	require.NoError(t, err)
	h := b.Header()

	var allChunks []chunk.ProofCarryingChunk
	for shareID := 0; shareID < consts.NumCoded; shareID++ {
		shares, err := b.GetShare(shareID)
		require.NoError(t, err)
		allChunks = append(allChunks, shares...)
	}

	rb := blob.NewRepairingBlob(h)
	for i := range allChunks {
		_ = rb.AddChunk(&allChunks[i])
	}

	sr := blob.NewStreamReader(h, func(chunksetID int) (io.Reader, error) {
		repaired, err := rb.GetRepairedChunkset(chunksetID)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(repaired), nil
	})

	out, err := io.ReadAll(sr)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func isIgnorable(err error) bool {
	var derr *decdserr.Error
	if !errors.As(err, &derr) {
		return false
	}
	return derr.Ignorable()
}
