package service

import (
	"sync"
	"time"

	"github.com/buslane/buslane/internal/domain"
)

// session is the in-memory state of one in-progress import. The document,
// mapping, and raw bytes are exclusively owned by this session.
type session struct {
	id        string
	schemaID  string
	actor     string
	createdAt time.Time

	doc     *domain.SourceDocument
	mapping *domain.ColumnMapping
	raw     []byte

	mu         sync.Mutex
	loading    bool
	progress   int
	lastResult *domain.ImportResult
}

func (s *session) setProgress(percent int) {
	s.mu.Lock()
	s.progress = percent
	s.mu.Unlock()
}

// SessionView is the externally visible snapshot of a session.
type SessionView struct {
	ID         string                  `json:"id"`
	SchemaID   string                  `json:"schema_id"`
	FileName   string                  `json:"file_name"`
	Actor      string                  `json:"actor,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	Headers    []string                `json:"headers"`
	RowCount   int                     `json:"row_count"`
	Mapping    map[string]string       `json:"mapping"`
	Validation *domain.ValidationState `json:"validation"`
	Loading    bool                    `json:"loading"`
	Progress   int                     `json:"progress"`
	LastResult *domain.ImportResult    `json:"last_result,omitempty"`
}

// sessionStore is a concurrency-safe registry of live sessions.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) put(sess *session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
}

func (s *sessionStore) get(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionStore) remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}
