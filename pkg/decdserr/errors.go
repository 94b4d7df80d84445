// Package decdserr defines the sum-typed error taxonomy shared by every
// decds core package. Errors are values, not strings: callers compare
// Kind() or use errors.As to recognize a specific failure instead of
// matching on Error() text.
package decdserr

import (
	"fmt"

	"github.com/itzmeanjan/decds/pkg/consts"
)

// Kind identifies one member of the decds error taxonomy.
type Kind int

const (
	KindEmptyDataForBlob Kind = iota
	KindInvalidStartBound
	KindInvalidEndBound

	KindBlobHeaderSerializationFailed
	KindBlobHeaderDeserializationFailed

	KindProofCarryingChunkSerializationFailed
	KindProofCarryingChunkDeserializationFailed

	KindChunksetReadyToRepair
	KindChunksetNotYetReadyToRepair
	KindChunksetAlreadyRepaired
	KindChunksetRepairingFailed

	KindInvalidErasureCodedShareId
	KindInvalidChunksetId
	KindInvalidChunksetSize
	KindInvalidChunkMetadata
	KindInvalidProofInChunk
	KindChunkDecodingFailed

	KindNoLeafNodesToBuildMerkleTreeOn
	KindInvalidLeafNodeIndex
)

// Error is the single concrete error type returned by decds core
// packages. Its fields are only meaningful for the Kind that produced
// it; use the constructor functions below rather than building one by
// hand.
type Error struct {
	kind Kind

	id      int
	id2     int
	message string
}

// Kind reports which taxonomy member this error is.
func (e *Error) Kind() Kind {
	return e.kind
}

// Ignorable reports whether this error is expected to occur routinely
// during normal repair operation and can be safely ignored by a caller
// driving a repair loop, per the taxonomy's documented contract.
func (e *Error) Ignorable() bool {
	switch e.kind {
	case KindInvalidProofInChunk, KindInvalidChunkMetadata, KindChunkDecodingFailed, KindChunksetReadyToRepair, KindChunksetAlreadyRepaired:
		return true
	default:
		return false
	}
}

func (e *Error) Error() string {
	switch e.kind {
	case KindEmptyDataForBlob:
		return "empty data for blob"
	case KindInvalidStartBound:
		return "invalid start bound"
	case KindInvalidEndBound:
		return fmt.Sprintf("invalid end bound: %d", e.id)

	case KindBlobHeaderSerializationFailed:
		return fmt.Sprintf("failed to serialize blob header: %s", e.message)
	case KindBlobHeaderDeserializationFailed:
		return fmt.Sprintf("failed to deserialize blob header: %s", e.message)

	case KindProofCarryingChunkSerializationFailed:
		return fmt.Sprintf("failed to serialize proof carrying chunk: %s", e.message)
	case KindProofCarryingChunkDeserializationFailed:
		return fmt.Sprintf("failed to deserialize proof carrying chunk: %s", e.message)

	case KindChunksetReadyToRepair:
		return fmt.Sprintf("chunkset %d is ready to repair", e.id)
	case KindChunksetNotYetReadyToRepair:
		return fmt.Sprintf("chunkset %d is not ready to repair", e.id)
	case KindChunksetAlreadyRepaired:
		return fmt.Sprintf("chunkset %d is already repaired", e.id)
	case KindChunksetRepairingFailed:
		return fmt.Sprintf("chunkset %d repairing failed: %s", e.id, e.message)

	case KindInvalidErasureCodedShareId:
		return fmt.Sprintf("invalid erasure coded share id: %d (num_shares: %d)", e.id, consts.NumCoded)
	case KindInvalidChunksetId:
		return fmt.Sprintf("invalid chunkset id: %d (num_chunksets: %d)", e.id, e.id2)
	case KindInvalidChunksetSize:
		return fmt.Sprintf("invalid chunkset size: %dB, expected: %dB", e.id, consts.ChunksetSize)
	case KindInvalidChunkMetadata:
		return fmt.Sprintf("invalid chunk for chunkset %d", e.id)
	case KindInvalidProofInChunk:
		return fmt.Sprintf("invalid proof carrying chunk for chunkset %d", e.id)
	case KindChunkDecodingFailed:
		return fmt.Sprintf("decoding chunk for chunkset %d failed: %s", e.id, e.message)

	case KindNoLeafNodesToBuildMerkleTreeOn:
		return "no leaf nodes to build merkle tree on"
	case KindInvalidLeafNodeIndex:
		return fmt.Sprintf("invalid leaf node index: %d (num_leaves: %d)", e.id, e.id2)
	default:
		return "unknown decds error"
	}
}

func EmptyDataForBlob() *Error { return &Error{kind: KindEmptyDataForBlob} }

func InvalidStartBound() *Error { return &Error{kind: KindInvalidStartBound} }

func InvalidEndBound(end int) *Error { return &Error{kind: KindInvalidEndBound, id: end} }

func BlobHeaderSerializationFailed(msg string) *Error {
	return &Error{kind: KindBlobHeaderSerializationFailed, message: msg}
}

func BlobHeaderDeserializationFailed(msg string) *Error {
	return &Error{kind: KindBlobHeaderDeserializationFailed, message: msg}
}

func ProofCarryingChunkSerializationFailed(msg string) *Error {
	return &Error{kind: KindProofCarryingChunkSerializationFailed, message: msg}
}

func ProofCarryingChunkDeserializationFailed(msg string) *Error {
	return &Error{kind: KindProofCarryingChunkDeserializationFailed, message: msg}
}

func ChunksetReadyToRepair(id int) *Error { return &Error{kind: KindChunksetReadyToRepair, id: id} }

func ChunksetNotYetReadyToRepair(id int) *Error {
	return &Error{kind: KindChunksetNotYetReadyToRepair, id: id}
}

func ChunksetAlreadyRepaired(id int) *Error {
	return &Error{kind: KindChunksetAlreadyRepaired, id: id}
}

func ChunksetRepairingFailed(id int, msg string) *Error {
	return &Error{kind: KindChunksetRepairingFailed, id: id, message: msg}
}

func InvalidErasureCodedShareId(id int) *Error {
	return &Error{kind: KindInvalidErasureCodedShareId, id: id}
}

func InvalidChunksetId(id, numChunksets int) *Error {
	return &Error{kind: KindInvalidChunksetId, id: id, id2: numChunksets}
}

func InvalidChunksetSize(size int) *Error {
	return &Error{kind: KindInvalidChunksetSize, id: size}
}

func InvalidChunkMetadata(chunksetID int) *Error {
	return &Error{kind: KindInvalidChunkMetadata, id: chunksetID}
}

func InvalidProofInChunk(chunksetID int) *Error {
	return &Error{kind: KindInvalidProofInChunk, id: chunksetID}
}

func ChunkDecodingFailed(chunksetID int, msg string) *Error {
	return &Error{kind: KindChunkDecodingFailed, id: chunksetID, message: msg}
}

func NoLeafNodesToBuildMerkleTreeOn() *Error {
	return &Error{kind: KindNoLeafNodesToBuildMerkleTreeOn}
}

func InvalidLeafNodeIndex(leafIndex, numLeaves int) *Error {
	return &Error{kind: KindInvalidLeafNodeIndex, id: leafIndex, id2: numLeaves}
}
