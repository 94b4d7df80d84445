// Package metrics exposes the prometheus instrumentation for a
// repairing blob: how many chunks it has accepted or rejected, broken
// down by rejection reason, and how many chunksets are currently ready
// to repair.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	errChunksAcceptedVectorMetrics    = errors.New("failed to register chunks_accepted_total metric")
	errChunksRejectedVectorMetrics    = errors.New("failed to register chunks_rejected_total metric")
	errChunksetsReadyToRepairGaugeVec = errors.New("failed to register chunksets_ready_to_repair metric")
)

const rejectionReasonLabel = "reason"

// Rejection reasons a chunk can be counted under. RepairingBlob.AddChunk
// maps each decdserr kind it can return to one of these;
// ReasonDecodingFailed covers any kind without a reason of its own.
const (
	ReasonInvalidProof      = "invalid_proof"
	ReasonUnknownChunkset   = "unknown_chunkset"
	ReasonAlreadyRepaired   = "already_repaired"
	ReasonAlreadyReady      = "already_ready"
	ReasonLinearlyDependent = "linearly_dependent"
	ReasonDecodingFailed    = "decoding_failed"
)

// RepairMetrics tracks chunk acceptance/rejection and readiness for one
// or more RepairingBlob instances sharing the same registry.
type RepairMetrics struct {
	chunksAccepted prometheus.Counter
	chunksRejected *prometheus.CounterVec
	readyToRepair  prometheus.Gauge
}

// New registers and returns a RepairMetrics against reg.
func New(reg prometheus.Registerer) (*RepairMetrics, error) {
	accepted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "decds_chunks_accepted_total",
		Help: "Total number of erasure-coded chunks accepted into repair.",
	})
	if err := reg.Register(accepted); err != nil {
		return nil, errors.Join(errChunksAcceptedVectorMetrics, err)
	}

	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "decds_chunks_rejected_total",
		Help: "Total number of erasure-coded chunks rejected during repair, by reason.",
	}, []string{rejectionReasonLabel})
	if err := reg.Register(rejected); err != nil {
		return nil, errors.Join(errChunksRejectedVectorMetrics, err)
	}

	ready := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "decds_chunksets_ready_to_repair",
		Help: "Number of chunksets currently holding enough independent chunks to be reconstructed.",
	})
	if err := reg.Register(ready); err != nil {
		return nil, errors.Join(errChunksetsReadyToRepairGaugeVec, err)
	}

	return &RepairMetrics{chunksAccepted: accepted, chunksRejected: rejected, readyToRepair: ready}, nil
}

// ObserveAccepted records one successfully absorbed chunk.
func (m *RepairMetrics) ObserveAccepted() {
	m.chunksAccepted.Inc()
}

// ObserveRejected records one rejected chunk under reason.
func (m *RepairMetrics) ObserveRejected(reason string) {
	m.chunksRejected.WithLabelValues(reason).Inc()
}

// SetReadyToRepair reports the current count of chunksets ready to be
// reconstructed.
func (m *RepairMetrics) SetReadyToRepair(count int) {
	m.readyToRepair.Set(float64(count))
}
