package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tlns"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "frames_sent_total",
			Help:      "Frames written to the link.",
		},
		[]string{"link"},
	)
	frameBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "frame_bytes_total",
			Help:      "Encoded bytes written to the link.",
		},
		[]string{"link"},
	)
	linkWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "writes_total",
			Help:      "Link write attempts by result.",
		},
		[]string{"link", "result"},
	)
	linkWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "write_duration_seconds",
			Help:      "Link write duration in seconds, including rate limiting.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"link"},
	)
	framesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "frames_decoded_total",
			Help:      "Frames recovered by the receive decoder.",
		},
		[]string{"link"},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "decode_errors_total",
			Help:      "Frames dropped by the receive decoder.",
		},
		[]string{"link", "reason"},
	)
	serialIfaces = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ifaces",
			Name:      "available",
			Help:      "Serial and CAN interfaces in the latest scan.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			framesSent,
			frameBytes,
			linkWrites,
			linkWriteDuration,
			framesDecoded,
			decodeErrors,
			serialIfaces,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordLinkWrite counts one write attempt. size is only added on success.
func RecordLinkWrite(link string, size int, duration time.Duration, err error) {
	RegisterMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	linkWrites.WithLabelValues(link, result).Inc()
	linkWriteDuration.WithLabelValues(link).Observe(duration.Seconds())
	if err == nil {
		framesSent.WithLabelValues(link).Inc()
		frameBytes.WithLabelValues(link).Add(float64(size))
	}
}

func RecordFrameDecoded(link string) {
	RegisterMetrics()
	framesDecoded.WithLabelValues(link).Inc()
}

func RecordDecodeError(link, reason string) {
	RegisterMetrics()
	decodeErrors.WithLabelValues(link, reason).Inc()
}

func SetSerialInterfaces(n int) {
	RegisterMetrics()
	serialIfaces.Set(float64(n))
}
