// Package ws adapts websocket connections to the hub's framed-message inbox.
// It is a thin transport wrapper: framing and byte handling stay here, all
// semantics live behind the hub.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"tankbots/internal/hub"
	"tankbots/internal/session"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the request, registers a session with the hub and pumps
// frames in both directions. Outbound order follows the session's FIFO
// queue; inbound frames are handed to the hub undecoded.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.SessionOpened{Addr: r.RemoteAddr, Reply: reply}
		sess := <-reply
		defer func() { h.Inbox() <- hub.SessionClosed{SessionID: sess.ID} }()

		// Writer: drain the outbound queue until the hub closes it.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for env := range sess.Outbox {
				payload, err := json.Marshal(env)
				if err != nil {
					log.Error("marshal outbound envelope",
						zap.String("session", sess.ID), zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
			conn.Close(websocket.StatusGoingAway, "session closed")
		}()

		// Reader loop: every frame goes to the hub; decode errors are the
		// hub's to report so the connection stays open on bad payloads.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
			h.Inbox() <- hub.FrameReceived{SessionID: sess.ID, Data: data}
		}
	}
}
