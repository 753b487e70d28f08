// Package session tracks the lifecycle of one uploaded document from
// upload through background ingestion to answering. A session transitions
// exactly once out of Processing, to either Ready or Error, and never again.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docchat/internal/core"
)

// State is the lifecycle state of a session.
type State string

const (
	StateProcessing State = "processing"
	StateReady      State = "ready"
	StateError      State = "error"
)

// Answerer answers one question against an already built index.
type Answerer interface {
	Answer(ctx context.Context, question string) (core.Answer, error)
}

// Session is the state for one uploaded document. All fields behind mu;
// the answerer is set once on the Processing→Ready transition.
type Session struct {
	ID string

	mu       sync.RWMutex
	state    State
	answerer Answerer
	errMsg   string

	done chan struct{}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ErrMessage returns the stored failure message, or "" outside StateError.
func (s *Session) ErrMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Done is closed once the session leaves Processing. It is the task handle
// for the background ingestion: callers can await completion without polling.
func (s *Session) Done() <-chan struct{} { return s.done }

// Answer delegates to the session's answerer. It fails fast with
// ErrSessionNotReady while ingestion is running and with the stored error
// for failed sessions; it never blocks waiting for ingestion.
func (s *Session) Answer(ctx context.Context, question string) (core.Answer, error) {
	s.mu.RLock()
	state, qa, msg := s.state, s.answerer, s.errMsg
	s.mu.RUnlock()

	switch state {
	case StateProcessing:
		return core.Answer{}, core.ErrSessionNotReady
	case StateError:
		return core.Answer{}, errors.New(msg)
	}
	// The model call is long-running; it runs outside the session lock so
	// it cannot stall status or chat requests for other sessions.
	return qa.Answer(ctx, question)
}

// Registry owns every session for the process lifetime.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{sessions: make(map[string]*Session), log: log}
}

// Create allocates a new session in Processing and registers it
// immediately, so a status poll right after upload sees "processing".
func (r *Registry) Create() *Session {
	s := &Session{
		ID:    uuid.NewString(),
		state: StateProcessing,
		done:  make(chan struct{}),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session or core.ErrSessionNotFound for ids that were
// never created.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return s, nil
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Ready transitions Processing→Ready and attaches the answerer. A call on a
// session that already left Processing is logged and ignored.
func (r *Registry) Ready(id string, qa Answerer) {
	s, err := r.Get(id)
	if err != nil {
		r.log.Warn("ready for unknown session", zap.String("session_id", id))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProcessing {
		r.log.Warn("ignoring ready transition",
			zap.String("session_id", id), zap.String("state", string(s.state)))
		return
	}
	s.state = StateReady
	s.answerer = qa
	close(s.done)
}

// Fail transitions Processing→Error with the failure message. A call on a
// session that already left Processing is logged and ignored.
func (r *Registry) Fail(id string, msg string) {
	s, err := r.Get(id)
	if err != nil {
		r.log.Warn("fail for unknown session", zap.String("session_id", id))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProcessing {
		r.log.Warn("ignoring error transition",
			zap.String("session_id", id), zap.String("state", string(s.state)))
		return
	}
	s.state = StateError
	s.errMsg = msg
	close(s.done)
}
