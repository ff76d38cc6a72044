//go:build !integration

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestIncDownloadNormalizesLabel(t *testing.T) {
	before := counterValue(t, downloadsTotal.WithLabelValues(ResultTooLong))
	IncDownload("  TOO_LONG ")
	after := counterValue(t, downloadsTotal.WithLabelValues(ResultTooLong))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestTrackInFlight(t *testing.T) {
	read := func() float64 {
		var m dto.Metric
		if err := downloadsInFlight.Write(&m); err != nil {
			t.Fatalf("write metric: %v", err)
		}
		return m.GetGauge().GetValue()
	}
	base := read()
	done := TrackInFlight()
	if read() != base+1 {
		t.Fatalf("expected gauge to increment")
	}
	done()
	if read() != base {
		t.Fatalf("expected gauge to return to %v", base)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}
