// Package server exposes a board over HTTP: cell painting, pushes to the
// link, a websocket snapshot stream, and health/metrics endpoints.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/tlns/internal/auth"
	"github.com/danmuck/tlns/internal/geometry"
	"github.com/danmuck/tlns/internal/grid"
	"github.com/danmuck/tlns/internal/ifaces"
	"github.com/danmuck/tlns/internal/link"
	"github.com/danmuck/tlns/internal/logging"
	"github.com/danmuck/tlns/internal/observability"
	"github.com/danmuck/tlns/internal/protocol/frame"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

var ErrNoLink = errors.New("server: no link attached")

// Pusher sends a grid over a link.
type Pusher interface {
	Send(ctx context.Context, g *grid.Grid) error
	Stats() link.TransmitStats
	Connected() bool
}

type DecodeStats interface {
	Stats() frame.Stats
}

type IfaceSource interface {
	Snapshot() ifaces.Snapshot
}

type Options struct {
	Name        string
	Addr        string
	CorsOrigins []string
	TLSCertFile string
	TLSKeyFile  string
	Mapping     geometry.Mapping
	// Brush is painted by pointer hits; 0 means grid.MaxBrightness.
	Brush        uint8
	PushOnChange bool

	Pusher   Pusher
	Receiver DecodeStats
	Ifaces   IfaceSource
	// Auth guards mutating routes when set.
	Auth     auth.Validator
}

type Server struct {
	opts     Options
	board    *Board
	router   *gin.Engine
	hub      *hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
	appeared time.Time
}

func New(board *Board, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "boardd"
	}
	if opts.Brush == 0 {
		opts.Brush = grid.MaxBrightness
	}
	origins := normalizeOrigins(opts.CorsOrigins)

	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(opts.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", auth.HeaderToken},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		opts:     opts,
		board:    board,
		router:   r,
		hub:      newHub(),
		logger:   logging.Component("server"),
		appeared: time.Now(),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: func(req *http.Request) bool {
		return originAllowed(origins, req.Header.Get("Origin"))
	}}
	s.RegisterRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Board() *Board {
	return s.board
}

// Serve listens on opts.Addr until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done. TLS is enabled when both
// cert and key files are configured.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	useTLS := s.opts.TLSCertFile != "" && s.opts.TLSKeyFile != ""
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Bool("tls", useTLS).Msg("board api listening")
		if useTLS {
			errCh <- srv.ServeTLS(ln, s.opts.TLSCertFile, s.opts.TLSKeyFile)
			return
		}
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// changed publishes a new board version to subscribers and, when
// configured, pushes it to the link. Push errors are logged and returned.
func (s *Server) changed(ctx context.Context, snap BoardSnapshot) error {
	s.hub.publish(snap.Grid.Bytes())
	if !s.opts.PushOnChange || s.opts.Pusher == nil {
		return nil
	}
	return s.push(ctx, snap)
}

func (s *Server) push(ctx context.Context, snap BoardSnapshot) error {
	if s.opts.Pusher == nil {
		return ErrNoLink
	}
	if err := s.opts.Pusher.Send(ctx, snap.Grid); err != nil {
		s.logger.Warn().Err(err).Uint64("version", snap.Version).Msg("board push failed")
		return err
	}
	return nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		out = append(out, origin)
	}
	if len(out) == 0 {
		return []string{"http://localhost:3000"}
	}
	return out
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
