package api

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/bp-trend-server/internal/domain"
)

const (
	watchWriteTimeout   = 10 * time.Second
	watchComputeTimeout = 2 * time.Minute
)

// watchEvent is the message pushed to trend watchers. Exactly one of Result
// and Error is set.
type watchEvent struct {
	Generation uint64                      `json:"generation"`
	Result     *domain.TrendAnalysisResult `json:"result,omitempty"`
	Error      string                      `json:"error,omitempty"`
}

// watchHub pushes a freshly computed trend analysis to connected WebSocket
// clients after every journal mutation.
//
// Delivery is last-requested-wins: each notify bumps a generation counter,
// and a computation that finishes after a newer one was requested is
// discarded rather than cancelled. Clients therefore never observe an older
// analysis overwriting a newer one.
type watchHub struct {
	log      *logrus.Logger
	compute  func(ctx context.Context) (*domain.TrendAnalysisResult, error)
	upgrader websocket.Upgrader

	generation atomic.Uint64

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool

	// Serializes writes; gorilla/websocket allows one concurrent writer.
	writeMu sync.Mutex
}

func newWatchHub(logger *logrus.Logger, compute func(ctx context.Context) (*domain.TrendAnalysisResult, error)) *watchHub {
	return &watchHub{
		log:     logger,
		compute: compute,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The API is same-machine or CORS-open; no origin allowlist.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// handleWatch upgrades the request and registers the client. The current
// analysis is pushed immediately so a fresh subscriber never starts blank.
func (h *watchHub) handleWatch(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("Trend watch upgrade failed")
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.conns[conn] = struct{}{}
	watchers := len(h.conns)
	h.mu.Unlock()

	h.log.WithField("watchers", watchers).Debug("Trend watcher connected")

	go h.sendSnapshot(conn)

	// Reader loop: the client sends nothing meaningful, but reading is what
	// detects disconnects and handles control frames.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// notify recomputes the trend analysis and broadcasts it, unless a newer
// notify supersedes this one before it completes.
func (h *watchHub) notify() {
	gen := h.generation.Add(1)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), watchComputeTimeout)
		defer cancel()

		result, err := h.compute(ctx)

		if h.generation.Load() != gen {
			h.log.WithField("generation", gen).Debug("Discarding superseded trend analysis")
			return
		}

		event := &watchEvent{Generation: gen}
		if err != nil {
			event.Error = err.Error()
		} else {
			event.Result = result
		}

		h.broadcast(event)
	}()
}

// sendSnapshot computes and delivers the current analysis to one connection.
func (h *watchHub) sendSnapshot(conn *websocket.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), watchComputeTimeout)
	defer cancel()

	event := &watchEvent{Generation: h.generation.Load()}
	result, err := h.compute(ctx)
	if err != nil {
		event.Error = err.Error()
	} else {
		event.Result = result
	}

	if err := h.writeEvent(conn, event); err != nil {
		h.drop(conn)
	}
}

// broadcast delivers the event to every live connection, dropping any that
// fail to accept the write.
func (h *watchHub) broadcast(event *watchEvent) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := h.writeEvent(conn, event); err != nil {
			h.log.WithError(err).Debug("Dropping trend watcher after failed write")
			h.drop(conn)
		}
	}
}

func (h *watchHub) writeEvent(conn *websocket.Conn, event *watchEvent) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
	return conn.WriteJSON(event)
}

func (h *watchHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()

	if present {
		conn.Close()
	}
}

// close disconnects all watchers; used during server shutdown.
func (h *watchHub) close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(watchWriteTimeout),
		)
		conn.Close()
	}
}
