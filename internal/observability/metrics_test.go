package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/danmuck/tlns/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func metricValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("boardd", "GET", "/health", 200, 12*time.Millisecond)
	RecordFrameDecoded("loop")
	RecordDecodeError("loop", "checksum")
	SetSerialInterfaces(3)

	if got := metricValue(t, serialIfaces); got != 3 {
		t.Fatalf("serial interface gauge = %v, want 3", got)
	}
}

func TestRecordLinkWriteCountsBytesOnSuccessOnly(t *testing.T) {
	testlog.Start(t)
	const link = "metrics-test"

	RecordLinkWrite(link, 10, time.Millisecond, nil)
	RecordLinkWrite(link, 10, time.Millisecond, errors.New("boom"))

	if got := metricValue(t, framesSent.WithLabelValues(link)); got != 1 {
		t.Fatalf("frames sent = %v, want 1", got)
	}
	if got := metricValue(t, frameBytes.WithLabelValues(link)); got != 10 {
		t.Fatalf("frame bytes = %v, want 10", got)
	}
	if got := metricValue(t, linkWrites.WithLabelValues(link, "error")); got != 1 {
		t.Fatalf("failed writes = %v, want 1", got)
	}
}
