package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CK6170/forcescale-go/internal/config"
	"github.com/CK6170/forcescale-go/scale"
)

type Server struct {
	mux *http.ServeMux

	store   *SessionStore
	webRoot string
}

func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		mux:     http.NewServeMux(),
		store:   NewSessionStore(time.Duration(cfg.LabelDelay)),
		webRoot: cfg.WebRoot,
	}

	// API
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("/api/session", s.handleSessionState)
	s.mux.HandleFunc("/api/event", s.handleEvent)
	s.mux.HandleFunc("/api/tare", s.handleTare)

	// WS
	s.mux.HandleFunc("/ws/scale", s.handleWSScale)

	// Static frontend
	s.mux.Handle("/", http.FileServer(http.Dir(s.webRoot)))

	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// Store exposes the session store, mainly for the device source.
func (s *Server) Store() *SessionStore { return s.store }

// Close stops pending caption timers and disconnects all sockets.
func (s *Server) Close() { s.store.CloseAll() }

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ids := s.store.IDs()
	s.writeJSON(w, 200, HealthResponse{OK: true, Timestamp: time.Now(), Sessions: len(ids), IDs: ids})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	sess := s.store.Create()
	logrus.WithField("session", sess.ID()).Info("Session created")
	s.writeJSON(w, 200, SessionResponse{SessionID: sess.ID()})
}

// sessionFromQuery resolves ?id= and writes the error response when it fails.
func (s *Server) sessionFromQuery(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		s.writeJSON(w, 400, APIError{Error: "missing id"})
		return nil, false
	}
	sess, ok := s.store.Get(id)
	if !ok {
		s.writeJSON(w, 404, APIError{Error: "session not found"})
		return nil, false
	}
	return sess, true
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	sess, ok := s.sessionFromQuery(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodGet {
		s.writeJSON(w, 200, sess.Snapshot())
		return
	}
	if sess.ID() == DeviceSessionID {
		s.writeJSON(w, 409, APIError{Error: "device session cannot be deleted"})
		return
	}
	s.store.Remove(sess.ID())
	logrus.WithField("session", sess.ID()).Info("Session deleted")
	s.writeJSON(w, 200, SessionResponse{SessionID: sess.ID()})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	sess, ok := s.sessionFromQuery(w, r)
	if !ok {
		return
	}
	var ev scale.Event
	if err := s.readJSON(r, &ev); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	s.applyAndRespond(w, sess, ev)
}

func (s *Server) handleTare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	sess, ok := s.sessionFromQuery(w, r)
	if !ok {
		return
	}
	s.applyAndRespond(w, sess, scale.Event{Kind: scale.EventTare})
}

func (s *Server) applyAndRespond(w http.ResponseWriter, sess *Session, ev scale.Event) {
	res, err := sess.Apply(ev)
	if err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	out := EventResponse{Display: newDisplayDTO(res.State), Handled: res.Handled}
	if res.Tare != "" {
		out.Label = sess.Snapshot().Label
	}
	s.writeJSON(w, 200, out)
}
