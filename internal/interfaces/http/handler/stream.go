package handler

import (
	"io"
	"net/http"
	"sync"

	"github.com/vendra/backend/internal/domain/notification"
	"github.com/vendra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// clientBufferSize bounds the per-client event queue. A client that
// falls this far behind starts losing events instead of blocking pushes.
const clientBufferSize = 16

// NotificationStream fans notification records out to SSE clients. It
// implements the application Pusher contract: Push never blocks, events
// for slow clients are dropped.
type NotificationStream struct {
	mu      sync.RWMutex
	clients map[chan *notification.Record]struct{}
	closed  bool
	logger  *zap.Logger
}

// NewNotificationStream creates an SSE fan-out hub
func NewNotificationStream(logger *zap.Logger) *NotificationStream {
	return &NotificationStream{
		clients: make(map[chan *notification.Record]struct{}),
		logger:  logger.Named("notification-stream"),
	}
}

// Push delivers a record to every connected client without blocking
func (s *NotificationStream) Push(record *notification.Record) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.clients {
		select {
		case ch <- record:
		default:
			s.logger.Warn("dropping event for slow stream client",
				zap.String("notification_id", record.ID.String()))
		}
	}
}

// Close disconnects all clients. Further pushes are discarded.
func (s *NotificationStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.clients {
		close(ch)
		delete(s.clients, ch)
	}
}

// ClientCount returns the number of connected clients
func (s *NotificationStream) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *NotificationStream) subscribe() (chan *notification.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	ch := make(chan *notification.Record, clientBufferSize)
	s.clients[ch] = struct{}{}
	return ch, true
}

func (s *NotificationStream) unsubscribe(ch chan *notification.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[ch]; ok {
		delete(s.clients, ch)
		close(ch)
	}
}

// Serve streams notification events to the client as SSE
func (s *NotificationStream) Serve(c *gin.Context) {
	ch, ok := s.subscribe()
	if !ok {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	defer s.unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case record, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("notification", dto.NewNotificationResponse(record))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
