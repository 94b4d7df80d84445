package decdserr_test

import (
	"errors"
	"testing"

	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	require.Equal(t, "empty data for blob", decdserr.EmptyDataForBlob().Error())
	require.Equal(t, "chunkset 3 is ready to repair", decdserr.ChunksetReadyToRepair(3).Error())
	require.Equal(t, "invalid chunkset id: 7 (num_chunksets: 4)", decdserr.InvalidChunksetId(7, 4).Error())
	require.Equal(t, "invalid chunkset size: 123B, expected: 10485760B", decdserr.InvalidChunksetSize(123).Error())
	require.Equal(t, "decoding chunk for chunkset 2 failed: rank deficient", decdserr.ChunkDecodingFailed(2, "rank deficient").Error())
	require.Equal(t, "invalid leaf node index: 5 (num_leaves: 3)", decdserr.InvalidLeafNodeIndex(5, 3).Error())
}

func TestIgnorable(t *testing.T) {
	require.True(t, decdserr.InvalidProofInChunk(0).Ignorable())
	require.True(t, decdserr.InvalidChunkMetadata(0).Ignorable())
	require.True(t, decdserr.ChunkDecodingFailed(0, "x").Ignorable())
	require.True(t, decdserr.ChunksetReadyToRepair(0).Ignorable())
	require.True(t, decdserr.ChunksetAlreadyRepaired(0).Ignorable())
	require.False(t, decdserr.ChunksetNotYetReadyToRepair(0).Ignorable())
	require.False(t, decdserr.EmptyDataForBlob().Ignorable())
}

func TestErrorsAs(t *testing.T) {
	var err error = decdserr.InvalidChunksetId(1, 2)
	var derr *decdserr.Error
	require.True(t, errors.As(err, &derr))
	require.Equal(t, decdserr.KindInvalidChunksetId, derr.Kind())
}
