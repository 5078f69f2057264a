package server

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CK6170/forcescale-go/scale"
	"github.com/CK6170/forcescale-go/ui"
)

// Session is one scale face: a scale core, the sockets watching it and the
// tare button caption. All input for a session is applied one event at a
// time under mu, so the core sees a single ordered stream.
type Session struct {
	mu sync.Mutex

	id    string
	scale *scale.Scale
	hub   *WSHub
	// transient sessions belong to the socket that created them
	transient bool

	label      string
	labelDelay time.Duration
	labelTimer *time.Timer
	labelGen   int
}

func newSession(id string, labelDelay time.Duration) *Session {
	return &Session{
		id:         id,
		scale:      scale.New(),
		hub:        NewWSHub(),
		label:      ui.TareLabel(""),
		labelDelay: labelDelay,
	}
}

func (s *Session) ID() string { return s.id }

// Apply feeds ev to the core and pushes the result to every attached socket.
func (s *Session) Apply(ev scale.Event) (scale.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := scale.Apply(s.scale, ev)
	if err != nil {
		return res, err
	}
	if !res.Handled {
		return res, nil
	}
	s.hub.Broadcast(WSMessage{Type: msgDisplay, Data: newDisplayDTO(res.State)})
	if res.Tare != "" {
		s.setLabelLocked(ui.TareLabel(res.Tare))
		s.scheduleLabelResetLocked()
		logrus.WithFields(logrus.Fields{
			"session": s.id,
			"action":  res.Tare,
			"offset":  s.scale.Offset(),
		}).Debug("Tare")
	}
	return res, nil
}

func (s *Session) setLabelLocked(label string) {
	s.label = label
	s.hub.Broadcast(WSMessage{Type: msgLabel, Data: LabelDTO{Label: label}})
}

// scheduleLabelResetLocked restores the resting caption after labelDelay.
// A newer tare supersedes the pending reset.
func (s *Session) scheduleLabelResetLocked() {
	if s.labelTimer != nil {
		s.labelTimer.Stop()
	}
	s.labelGen++
	gen := s.labelGen
	s.labelTimer = time.AfterFunc(s.labelDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.labelGen {
			return
		}
		s.labelTimer = nil
		s.setLabelLocked(ui.TareLabel(""))
	})
}

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot() SessionStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStateResponse{
		SessionID: s.id,
		Display:   newDisplayDTO(s.scale.State()),
		Force:     s.scale.Force(),
		Offset:    s.scale.Offset(),
		Label:     s.label,
		Clients:   s.hub.Len(),
	}
}

// attach adds a socket and sends it the current state. Holding mu keeps any
// concurrent broadcast from reaching the socket before its greeting.
func (s *Session) attach(c *WSClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hub.AddClient(c)
	if err := c.Send(WSMessage{Type: msgSession, Data: SessionResponse{SessionID: s.id}}); err != nil {
		return err
	}
	if err := c.Send(WSMessage{Type: msgDisplay, Data: newDisplayDTO(s.scale.State())}); err != nil {
		return err
	}
	return c.Send(WSMessage{Type: msgLabel, Data: LabelDTO{Label: s.label}})
}

// Close cancels a pending caption reset and drops every socket.
func (s *Session) Close() {
	s.mu.Lock()
	if s.labelTimer != nil {
		s.labelTimer.Stop()
		s.labelTimer = nil
	}
	s.labelGen++
	s.mu.Unlock()
	s.hub.CloseAll()
}
