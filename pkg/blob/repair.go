package blob

import (
	"errors"

	"github.com/itzmeanjan/decds/pkg/chunk"
	"github.com/itzmeanjan/decds/pkg/chunkset"
	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/itzmeanjan/decds/pkg/metrics"
)

// RepairingBlob drives incremental, chunkset-at-a-time reconstruction
// of a blob from a stream of incoming proof-carrying chunks. Callers
// own exclusive access to one RepairingBlob instance (it is not
// internally synchronized), but separate instances may run
// concurrently without interference.
type RepairingBlob struct {
	header *Header
	// body[id] is nil once the chunkset has been extracted via
	// GetRepairedChunkset — a tombstone recording that this chunkset
	// can never be repaired again, not merely that it hasn't been
	// started.
	body map[int]*chunkset.RepairingChunkSet

	metrics *metrics.RepairMetrics
}

// NewRepairingBlob returns a RepairingBlob seeded with one empty
// RepairingChunkSet per chunkset named in header.
func NewRepairingBlob(header *Header) *RepairingBlob {
	body := make(map[int]*chunkset.RepairingChunkSet, header.numChunksets)
	for id := 0; id < header.numChunksets; id++ {
		commitment := header.chunksetRootCommitments[id]
		body[id] = chunkset.NewRepairingChunkSet(id, commitment)
	}
	return &RepairingBlob{header: header, body: body}
}

// SetMetrics attaches a RepairMetrics sink; subsequent AddChunk calls
// record acceptance/rejection counts against it. Optional: a
// RepairingBlob with no metrics attached behaves identically, just
// without instrumentation.
func (rb *RepairingBlob) SetMetrics(m *metrics.RepairMetrics) {
	rb.metrics = m
}

// AddChunk validates c against the header and, if valid, absorbs it
// into the target chunkset's decoder.
func (rb *RepairingBlob) AddChunk(c *chunk.ProofCarryingChunk) error {
	err := rb.addChunk(c)
	if rb.metrics == nil {
		return err
	}

	if err == nil {
		rb.metrics.ObserveAccepted()
	} else {
		rb.metrics.ObserveRejected(rejectionReason(err))
	}
	rb.metrics.SetReadyToRepair(rb.countReadyToRepair())
	return err
}

func (rb *RepairingBlob) addChunk(c *chunk.ProofCarryingChunk) error {
	chunksetID := c.ChunksetID()

	entry, ok := rb.body[chunksetID]
	if !ok {
		return decdserr.InvalidChunksetId(chunksetID, rb.header.numChunksets)
	}
	if entry == nil {
		return decdserr.ChunksetAlreadyRepaired(chunksetID)
	}

	if !rb.header.ValidateChunk(c) {
		return decdserr.InvalidProofInChunk(chunksetID)
	}
	if entry.IsReadyToRepair() {
		return decdserr.ChunksetReadyToRepair(chunksetID)
	}
	return entry.AddChunkUnvalidated(c)
}

func (rb *RepairingBlob) countReadyToRepair() int {
	count := 0
	for _, entry := range rb.body {
		if entry != nil && entry.IsReadyToRepair() {
			count++
		}
	}
	return count
}

func rejectionReason(err error) string {
	var derr *decdserr.Error
	if !errors.As(err, &derr) {
		return metrics.ReasonDecodingFailed
	}
	switch derr.Kind() {
	case decdserr.KindInvalidChunksetId:
		return metrics.ReasonUnknownChunkset
	case decdserr.KindChunksetAlreadyRepaired:
		return metrics.ReasonAlreadyRepaired
	case decdserr.KindInvalidProofInChunk:
		return metrics.ReasonInvalidProof
	case decdserr.KindChunkDecodingFailed:
		return metrics.ReasonLinearlyDependent
	case decdserr.KindChunksetReadyToRepair:
		return metrics.ReasonAlreadyReady
	default:
		return metrics.ReasonDecodingFailed
	}
}

// IsChunksetReadyToRepair reports whether chunksetID has collected
// enough independent chunks to be reconstructed.
func (rb *RepairingBlob) IsChunksetReadyToRepair(chunksetID int) (bool, error) {
	entry, ok := rb.body[chunksetID]
	if !ok {
		return false, decdserr.InvalidChunksetId(chunksetID, rb.header.numChunksets)
	}
	return entry != nil && entry.IsReadyToRepair(), nil
}

// IsChunksetAlreadyRepaired reports whether chunksetID has already been
// extracted via GetRepairedChunkset.
func (rb *RepairingBlob) IsChunksetAlreadyRepaired(chunksetID int) (bool, error) {
	entry, ok := rb.body[chunksetID]
	if !ok {
		return false, decdserr.InvalidChunksetId(chunksetID, rb.header.numChunksets)
	}
	return entry == nil, nil
}

// GetRepairedChunkset reconstructs and returns chunksetID's original
// data, truncated to its effective size (the last chunkset may hold
// less than a full consts.ChunksetSize bytes). This permanently
// consumes the chunkset: a second call for the same ID returns
// ChunksetAlreadyRepaired.
func (rb *RepairingBlob) GetRepairedChunkset(chunksetID int) ([]byte, error) {
	alreadyRepaired, err := rb.IsChunksetAlreadyRepaired(chunksetID)
	if err != nil {
		return nil, err
	}
	if alreadyRepaired {
		return nil, decdserr.ChunksetAlreadyRepaired(chunksetID)
	}

	ready, err := rb.IsChunksetReadyToRepair(chunksetID)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, decdserr.ChunksetNotYetReadyToRepair(chunksetID)
	}

	entry := rb.body[chunksetID]
	rb.body[chunksetID] = nil

	repaired, err := entry.Repair()
	if err != nil {
		return nil, err
	}

	effectiveSize, err := rb.header.ChunksetSize(chunksetID)
	if err != nil {
		return nil, err
	}
	return repaired[:effectiveSize], nil
}
