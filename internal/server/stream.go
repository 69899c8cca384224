package server

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	subscriberBuffer = 16
	streamWriteWait  = 5 * time.Second
)

type subscriber struct {
	id   string
	msgs chan []byte
	once sync.Once
	slow chan struct{}
}

func (s *subscriber) closeSlow() {
	s.once.Do(func() { close(s.slow) })
}

// hub fans board snapshots out to websocket subscribers. A subscriber that
// falls behind is disconnected instead of blocking publishers.
type hub struct {
	mu   sync.Mutex
	subs map[string]*subscriber
}

func newHub() *hub {
	return &hub{subs: make(map[string]*subscriber)}
}

func (h *hub) add() *subscriber {
	s := &subscriber{
		id:   uuid.New().String(),
		msgs: make(chan []byte, subscriberBuffer),
		slow: make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[s.id] = s
	h.mu.Unlock()
	return s
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (h *hub) publish(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		select {
		case s.msgs <- msg:
		default:
			s.closeSlow()
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (s *Server) handleStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("board stream upgrade failed")
		return
	}
	defer conn.Close()

	sub := s.hub.add()
	defer s.hub.remove(sub.id)
	logger := s.logger.With().Str("subscriber", sub.id).Str("client_ip", c.ClientIP()).Logger()
	logger.Info().Msg("board stream subscribed")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg []byte) error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteMessage(websocket.BinaryMessage, msg)
	}

	if err := write(s.board.Snapshot().Grid.Bytes()); err != nil {
		logger.Debug().Err(err).Msg("board stream write failed")
		return
	}
	for {
		select {
		case <-closed:
			logger.Info().Msg("board stream closed by client")
			return
		case <-sub.slow:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "connection too slow"),
				time.Now().Add(streamWriteWait))
			logger.Warn().Msg("board stream dropped slow subscriber")
			return
		case msg := <-sub.msgs:
			if err := write(msg); err != nil {
				logger.Debug().Err(err).Msg("board stream write failed")
				return
			}
		}
	}
}
