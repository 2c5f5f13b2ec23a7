package chi

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/notice"
	"github.com/raseed-cloud/raseed/internal/logger"
	"github.com/raseed-cloud/raseed/internal/session"
)

// closeInvalidIdentity is the close code sent when the path identity fails
// validation at connect time.
const closeInvalidIdentity = 4000

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser clients connect from app origins; auth happens per message.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS handles GET /ws and GET /ws/{user_id}. The path variant fixes the
// identity for the whole session and validates it at connect; the bare
// variant expects an identity in every query message.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if userID != "" {
		if err := domain.ValidateIdentity(userID); err != nil {
			msg := websocket.FormatCloseMessage(closeInvalidIdentity,
				"invalid identity: must be an email address")
			_ = conn.WriteControl(websocket.CloseMessage, msg, closeDeadline())
			return
		}
	}

	var writeMu sync.Mutex
	send := func(n notice.Notice) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(n)
	}

	sess := session.New(userID, s.queries, send).
		WithMaxReceipts(s.queries.MaxResultReceipts())
	s.sessions.Add(sess)
	defer s.sessions.Remove(sess.ID())

	log := s.logger.With(zap.String("session_id", sess.ID()), zap.String("user_id", userID))
	ctx := logger.ContextWithLogger(r.Context(), log)
	log.Info("websocket session opened")

	if err := sess.Announce(); err != nil {
		log.Warn("announce failed", zap.Error(err))
		return
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			break
		}
		if err := sess.Handle(ctx, raw); err != nil {
			log.Warn("session terminated", zap.Error(err))
			break
		}
	}
	log.Info("websocket session closed")
}

func closeDeadline() time.Time { return time.Now().Add(5 * time.Second) }
