package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/tlns/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newTestRouter(logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(logger), RequestMetricsMiddleware("test"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/board/cells/:column/:row", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	return r
}

func TestRequestLoggerLevels(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	r := newTestRouter(logger)

	for _, path := range []string{"/health", "/board/cells/x/1", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected probe request to be suppressed at info, got %d lines: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"route":"/board/cells/:column/:row"`) || !strings.Contains(lines[0], `"level":"warn"`) {
		t.Fatalf("unexpected bad request log: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"route":"unmatched"`) || !strings.Contains(lines[1], `"path":"/nowhere"`) {
		t.Fatalf("unexpected unmatched log: %s", lines[1])
	}
}

func TestRequestMetricsUseRouteLabels(t *testing.T) {
	testlog.Start(t)
	r := newTestRouter(zerolog.Nop())

	before := metricValue(t, httpRequests.WithLabelValues("test", "GET", "unmatched", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/b", nil))
	after := metricValue(t, httpRequests.WithLabelValues("test", "GET", "unmatched", "404"))
	if after-before != 2 {
		t.Fatalf("unmatched requests = %v, want 2", after-before)
	}
}
