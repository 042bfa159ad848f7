package history

import (
	"sync"
	"time"

	"codeberg.org/forgeui/server/internal/technology"
	"github.com/google/uuid"
)

// maximum number of entries kept per session
const MaxEntries = 10

// one completed generation
type Entry struct {
	ID         string                `json:"id"`
	Prompt     string                `json:"prompt"`
	Code       string                `json:"code"`
	Technology technology.Technology `json:"technology"`
	Model      string                `json:"model"`
	Timestamp  string                `json:"timestamp"`
}

// creates an entry stamped with the given time
func NewEntry(prompt, code string, tech technology.Technology, model string, at time.Time) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Prompt:     prompt,
		Code:       code,
		Technology: tech,
		Model:      model,
		Timestamp:  at.UTC().Format(time.RFC3339),
	}
}

// bounded most-recent-first list of entries
type List struct {
	mu      sync.RWMutex
	entries []Entry
	max     int
}

func New() *List {
	return NewWithLimit(MaxEntries)
}

func NewWithLimit(limit int) *List {
	if limit <= 0 {
		limit = MaxEntries
	}

	return &List{
		entries: make([]Entry, 0, limit),
		max:     limit,
	}
}

// inserts an entry at the front, evicting the oldest beyond the limit
func (l *List) Add(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]Entry, 0, l.max)
	next = append(next, e)

	for _, existing := range l.entries {
		if len(next) == l.max {
			break
		}

		next = append(next, existing)
	}

	l.entries = next
}

// returns a copy of the entries, most recent first
func (l *List) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)

	return out
}

func (l *List) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}

	return Entry{}, false
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}
