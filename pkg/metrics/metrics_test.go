package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/itzmeanjan/decds/pkg/metrics"
)

func TestObserveAcceptedAndRejected(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	m.ObserveAccepted()
	m.ObserveAccepted()
	m.ObserveRejected(metrics.ReasonInvalidProof)
	m.SetReadyToRepair(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	var accepted, rejected, ready float64
	for _, f := range families {
		switch f.GetName() {
		case "decds_chunks_accepted_total":
			accepted = f.Metric[0].GetCounter().GetValue()
		case "decds_chunks_rejected_total":
			rejected = sumCounters(f.Metric)
		case "decds_chunksets_ready_to_repair":
			ready = f.Metric[0].GetGauge().GetValue()
		}
	}

	require.Equal(t, float64(2), accepted)
	require.Equal(t, float64(1), rejected)
	require.Equal(t, float64(3), ready)
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	require.Error(t, err)
}

func sumCounters(ms []*dto.Metric) float64 {
	var total float64
	for _, m := range ms {
		total += m.GetCounter().GetValue()
	}
	return total
}
