package sessions

import (
	"context"
	"sync"
	"time"

	"codeberg.org/forgeui/server/internal/history"
)

// represents one client's generation session
type Session struct {
	ID           string
	History      *history.List
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time

	// guards the in-flight generation fields
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelCauseFunc
}

// identifies one generation run within a session
type Token struct {
	SessionID  string
	Generation uint64
	cancel     context.CancelCauseFunc
}

// manages generation sessions in memory
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration
	stop     chan struct{}
	once     sync.Once
}
