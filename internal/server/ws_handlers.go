package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/CK6170/forcescale-go/scale"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// local app; allow all
		return true
	},
}

// handleWSScale attaches a page to a session (a new one when ?id= is absent)
// and applies every event the page sends.
func (s *Server) handleWSScale(w http.ResponseWriter, r *http.Request) {
	var sess *Session
	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		var ok bool
		if sess, ok = s.store.Get(id); !ok {
			s.writeJSON(w, 404, APIError{Error: "session not found"})
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if sess == nil {
		sess = s.store.createTransient()
	}
	log := logrus.WithFields(logrus.Fields{"session": sess.ID(), "remote": r.RemoteAddr})

	client := NewWSClient(conn)
	if err := sess.attach(client); err != nil {
		s.detach(sess, client)
		return
	}
	log.Debug("Socket attached")

	// Keep reading until client disconnects
	for {
		var ev scale.Event
		if err := conn.ReadJSON(&ev); err != nil {
			s.detach(sess, client)
			log.Debug("Socket detached")
			return
		}
		if _, err := sess.Apply(ev); err != nil {
			log.WithError(err).Warn("Rejected event")
			_ = client.Send(WSMessage{Type: msgError, Data: APIError{Error: err.Error()}})
		}
	}
}

// detach drops the socket and, when it was the last one on a session the
// socket endpoint created, the session too.
func (s *Server) detach(sess *Session, c *WSClient) {
	sess.hub.Remove(c)
	if s.store.releaseIfIdle(sess) {
		logrus.WithField("session", sess.ID()).Debug("Session removed")
	}
}
