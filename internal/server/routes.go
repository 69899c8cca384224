package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/tlns/internal/auth"
	"github.com/danmuck/tlns/internal/geometry"
	"github.com/danmuck/tlns/internal/grid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "0.1.0"

type boardResponse struct {
	Version uint64 `json:"version"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	// Cells is base64 in JSON, column-major: index = column*height + row.
	Cells []byte `json:"cells"`
	Text  string `json:"text"`
}

type cellRequest struct {
	Value    *int     `json:"value"`
	Fraction *float64 `json:"fraction"`
}

type pointerRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Erase bool    `json:"erase"`
}

func (s *Server) RegisterRoutes() {
	r := s.router

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": s.opts.Name,
			"version": version,
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		ready := s.opts.Pusher == nil || s.opts.Pusher.Connected()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":   ready,
			"uptime":  time.Since(s.appeared).String(),
			"service": s.opts.Name,
			"version": version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/board", func(c *gin.Context) {
		c.JSON(http.StatusOK, snapshotResponse(s.board.Snapshot()))
	})

	r.GET("/board/text", func(c *gin.Context) {
		c.String(http.StatusOK, s.board.Snapshot().Grid.String())
	})

	r.GET("/board/stream", s.handleStream)

	// mutations share the optional token guard
	w := r.Group("")
	if s.opts.Auth != nil {
		w.Use(auth.Middleware(s.opts.Auth))
	}

	w.PUT("/board/cells/:column/:row", func(c *gin.Context) {
		column, row, ok := cellParams(c)
		if !ok {
			return
		}
		var req cellRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if (req.Value == nil) == (req.Fraction == nil) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of value or fraction is required"})
			return
		}
		s.mutate(c, func(g *grid.Grid) error {
			if req.Fraction != nil {
				return g.SetFraction(column, row, *req.Fraction)
			}
			if *req.Value < 0 || *req.Value > int(grid.MaxBrightness) {
				return grid.ErrInvalidBrightness
			}
			return g.Set(column, row, uint8(*req.Value))
		})
	})

	w.DELETE("/board/cells/:column/:row", func(c *gin.Context) {
		column, row, ok := cellParams(c)
		if !ok {
			return
		}
		s.mutate(c, func(g *grid.Grid) error {
			return g.Unset(column, row)
		})
	})

	w.POST("/board/clear", func(c *gin.Context) {
		s.mutate(c, func(g *grid.Grid) error {
			g.Clear()
			return nil
		})
	})

	w.POST("/board/pointer", func(c *gin.Context) {
		var req pointerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cell := s.opts.Mapping.CellOf(req.X, req.Y)
		if !s.opts.Mapping.Contains(cell) {
			c.JSON(http.StatusBadRequest, gin.H{"error": geometry.ErrOutOfGrid.Error(), "cell": cell})
			return
		}
		level := s.opts.Brush
		if req.Erase {
			level = 0
		}
		s.mutate(c, func(g *grid.Grid) error {
			return g.Set(cell.Column, cell.Row, level)
		})
	})

	w.POST("/board/push", func(c *gin.Context) {
		if s.opts.Pusher == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrNoLink.Error()})
			return
		}
		snap := s.board.Snapshot()
		if err := s.push(c.Request.Context(), snap); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": snap.Version})
	})

	r.GET("/ifaces", func(c *gin.Context) {
		if s.opts.Ifaces == nil {
			c.JSON(http.StatusOK, gin.H{"ifaces": []any{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ifaces": s.opts.Ifaces.Snapshot()})
	})

	r.GET("/link/stats", func(c *gin.Context) {
		out := gin.H{"subscribers": s.hub.count()}
		if s.opts.Pusher != nil {
			out["connected"] = s.opts.Pusher.Connected()
			out["transmit"] = s.opts.Pusher.Stats()
		}
		if s.opts.Receiver != nil {
			out["receive"] = s.opts.Receiver.Stats()
		}
		c.JSON(http.StatusOK, out)
	})
}

// mutate applies fn to the board and answers with the new state. Grid
// errors map to 400; a failed push-on-change keeps the mutation and reports
// the link error alongside the board.
func (s *Server) mutate(c *gin.Context, fn func(g *grid.Grid) error) {
	snap, err := s.board.Update(fn)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, grid.ErrOutOfBounds) || errors.Is(err, grid.ErrInvalidBrightness) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"board": snapshotResponse(snap)}
	if err := s.changed(c.Request.Context(), snap); err != nil {
		resp["push_error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func cellParams(c *gin.Context) (int, int, bool) {
	column, err := strconv.Atoi(c.Param("column"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "column must be an integer"})
		return 0, 0, false
	}
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row must be an integer"})
		return 0, 0, false
	}
	return column, row, true
}

func snapshotResponse(snap BoardSnapshot) boardResponse {
	return boardResponse{
		Version: snap.Version,
		Width:   snap.Grid.Width(),
		Height:  snap.Grid.Height(),
		Cells:   snap.Grid.Bytes(),
		Text:    snap.Grid.String(),
	}
}
