package wizard

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
)

// Store keeps wizard sessions in memory. Every read returns a copy and
// every write goes through Update, so handlers never share a *Session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	metrics  *metrics.Metrics
}

func NewStore(ttl time.Duration, m *metrics.Metrics) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		metrics:  m,
	}
}

// Create starts a new session at Welcome
func (st *Store) Create() *Session {
	s := NewSession()

	st.mu.Lock()
	st.sessions[s.ID] = s
	count := len(st.sessions)
	st.mu.Unlock()

	st.metrics.UpdateActiveSessions(count)
	logger.Log.Infof("[Wizard] 🆕 Session %s created", s.ID)
	return clone(s)
}

// Get returns a snapshot of the session
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return clone(s), nil
}

// Update applies fn to a copy of the session and commits it only if fn succeeds
func (st *Store) Update(id string, fn func(*Session) error) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	current, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	working := clone(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	st.sessions[id] = working
	return clone(working), nil
}

func (st *Store) Delete(id string) error {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	count := len(st.sessions)
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	st.metrics.UpdateActiveSessions(count)
	return nil
}

// Sweep drops sessions idle for longer than the TTL. Sessions with an
// analysis in flight are kept.
func (st *Store) Sweep(now time.Time) int {
	if st.ttl <= 0 {
		return 0
	}

	st.mu.Lock()
	removed := 0
	for id, s := range st.sessions {
		if s.Step == StepAnalyzing {
			continue
		}
		if now.Sub(s.UpdatedAt) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	count := len(st.sessions)
	st.mu.Unlock()

	st.metrics.RecordSessionsExpired(removed)
	st.metrics.UpdateActiveSessions(count)
	if removed > 0 {
		logger.Log.Infof("[Wizard] 🧹 Swept %d expired sessions (%d active)", removed, count)
	}
	return removed
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// clone deep-copies through JSON; sessions hold only plain data
func clone(s *Session) *Session {
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("wizard: session %s is not serializable: %v", s.ID, err))
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("wizard: session %s failed to decode: %v", s.ID, err))
	}
	return &out
}
