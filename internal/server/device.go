package server

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/CK6170/forcescale-go/scale"
)

// DeviceSessionID names the session fed by a hardware force source.
const DeviceSessionID = "device"

// SourceFunc streams events from an input device until ctx is done, calling
// fn for each event and onBad for input it cannot decode.
type SourceFunc func(ctx context.Context, fn func(scale.Event), onBad func(error)) error

// RunSource feeds a device into the device session so pages can watch it at
// /ws/scale?id=device.
func (s *Server) RunSource(ctx context.Context, source SourceFunc) error {
	sess := s.store.GetOrCreate(DeviceSessionID)
	log := logrus.WithField("session", sess.ID())
	log.Info("Device source started")
	defer log.Info("Device source stopped")

	return source(ctx, func(ev scale.Event) {
		if _, err := sess.Apply(ev); err != nil {
			log.WithError(err).Warn("Rejected device event")
		}
	}, func(err error) {
		log.WithError(err).Debug("Skipped device line")
	})
}
