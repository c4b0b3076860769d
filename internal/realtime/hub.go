// Package realtime pushes generation job updates to connected clients so
// the UI does not have to rely on polling alone.
package realtime

import (
	"sync"

	"github.com/vintageai/vintageai-backend/internal/models"
	"go.uber.org/zap"
)

// Conn is the slice of a websocket connection the hub needs. Satisfied by
// *websocket.Conn.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Hub struct {
	mu     sync.Mutex
	conns  map[string]map[Conn]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[Conn]struct{}),
		logger: logger,
	}
}

func (h *Hub) Register(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[Conn]struct{})
	}
	h.conns[userID][c] = struct{}{}
}

func (h *Hub) Unregister(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.conns[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// PublishJob fans a job row update out to the owner's connections. Dead
// connections are dropped on write failure.
func (h *Hub) PublishJob(userID string, job *models.GenerationJob) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[userID]
	if !ok {
		return
	}

	for c := range set {
		if err := c.WriteJSON(job); err != nil {
			h.logger.Debug("dropping dead realtime connection",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			delete(set, c)
			c.Close()
		}
	}
	if len(set) == 0 {
		delete(h.conns, userID)
	}
}

// ConnectionCount is used by tests and diagnostics.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[userID])
}
