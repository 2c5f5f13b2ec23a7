// Package session drives query sessions: per-message identity validation,
// sequential pipeline runs and typed progress notices. One session per
// connection; a process-wide registry tracks live sessions by generated id.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/notice"
	"github.com/raseed-cloud/raseed/internal/logger"
	"github.com/raseed-cloud/raseed/internal/usecase/query"
)

// Asker runs the query pipeline for one question.
type Asker interface {
	Ask(ctx context.Context, identity, question string, emit func(notice.Notice)) (*query.Result, error)
}

// Message is one inbound session frame.
type Message struct {
	Type   string `json:"type,omitempty"`
	UserID string `json:"user_id,omitempty"`
	Query  string `json:"query"`
}

// Session processes queries for one connection. Queries are strictly
// sequential: one completes or fails before the next is accepted.
type Session struct {
	id          string
	userID      string // fixed identity; empty means identity travels per message
	asker       Asker
	send        func(notice.Notice) error
	maxReceipts int
	now         func() time.Time

	mu     sync.Mutex
	closed bool
}

// New creates a session with a generated id. userID may be empty for the
// transport variant that carries identity in each message.
func New(userID string, asker Asker, send func(notice.Notice) error) *Session {
	return &Session{
		id:          uuid.NewString(),
		userID:      userID,
		asker:       asker,
		send:        send,
		maxReceipts: 10,
		now:         time.Now,
	}
}

// WithMaxReceipts caps how many receipts a result notice carries.
func (s *Session) WithMaxReceipts(n int) *Session {
	if n > 0 {
		s.maxReceipts = n
	}
	return s
}

// WithClock overrides the time source.
func (s *Session) WithClock(now func() time.Time) *Session {
	if now != nil {
		s.now = now
	}
	return s
}

// ID returns the generated session id.
func (s *Session) ID() string { return s.id }

// UserID returns the fixed identity, empty for stateless-identity sessions.
func (s *Session) UserID() string { return s.userID }

// Announce sends the connection notice.
func (s *Session) Announce() error {
	return s.send(notice.Connection(s.id, s.userID, "Connected. Send a query to get started."))
}

// Handle processes one raw inbound frame. Malformed frames and pipeline
// failures produce error notices; only transport failures (send errors) and
// use-after-close return an error.
func (s *Session) Handle(ctx context.Context, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return s.send(notice.Error(notice.CodeInvalidMessage, "Message must be a JSON object."))
	}

	if msg.Type == "ping" {
		return s.send(notice.Pong(s.now()))
	}

	identity := s.userID
	if identity == "" {
		identity = msg.UserID
	}
	if msg.Query == "" {
		return s.send(notice.Error(notice.CodeInvalidMessage, "Query text is required."))
	}
	return s.process(ctx, identity, msg.Query)
}

func (s *Session) process(ctx context.Context, identity, question string) error {
	log := logger.FromContext(ctx)

	var sendErr error
	emit := func(n notice.Notice) {
		if err := s.send(n); err != nil && sendErr == nil {
			sendErr = err
		}
	}

	res, err := s.asker.Ask(ctx, identity, question, emit)
	if sendErr != nil {
		return sendErr
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIdentityFormat):
			return s.send(notice.Error(notice.CodeIdentityFormat,
				"Invalid identity format. Please provide a valid email address."))
		case errors.Is(err, domain.ErrQueryExecution):
			log.Error("query execution failed", zap.String("session_id", s.id), zap.Error(err))
			return s.send(notice.Error(notice.CodeExecution,
				"Could not fetch receipts. Please try again."))
		default:
			log.Error("query pipeline failed", zap.String("session_id", s.id), zap.Error(err))
			return s.send(notice.Error(notice.CodeInternal, "Something went wrong."))
		}
	}

	return s.send(notice.Result(
		identity, question, res.Answer, res.Filter, res.Count,
		notice.ViewsOf(res.Receipts, s.maxReceipts), s.now(),
	))
}

// Close marks the session terminated. Subsequent Handle calls fail with
// ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
