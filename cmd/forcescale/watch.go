package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CK6170/forcescale-go/internal/config"
	"github.com/CK6170/forcescale-go/scale"
	serialpkg "github.com/CK6170/forcescale-go/serial"
	"github.com/CK6170/forcescale-go/ui"
)

func NewWatchCommand() *cobra.Command {
	var baud int

	cmd := &cobra.Command{
		Use:   "watch PORT",
		Short: "Print live readings from a sensor board on one console line",
		Long: `Print live readings from a sensor board on one console line.

Keys: t tares (or clears the tare when nothing is pressed), q or Esc quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("baud") && cfg.Serial != nil {
				baud = cfg.Serial.Baud
			}
			sp, err := serialpkg.Open(args[0], baud)
			if err != nil {
				return pkgerrors.Wrapf(err, "open serial port %s", args[0])
			}
			defer sp.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			events := make(chan scale.Event, 64)
			streamErr := make(chan error, 1)
			go func() {
				defer close(events)
				streamErr <- serialpkg.Stream(ctx, sp, func(ev scale.Event) {
					select {
					case events <- ev:
					case <-ctx.Done():
					}
				}, func(err error) {
					ui.Debugf(cfg.LogLevel == "debug", "%v\n", err)
				})
			}()

			ui.Greenf("Connected to %s. t = tare, q = quit\n", args[0])
			ui.DrainKeys()
			keys := ui.StartKeyEvents()
			defer ui.StopKeyEvents()

			w := &watcher{scale: scale.New(), labelDelay: time.Duration(cfg.LabelDelay), out: os.Stdout}
			w.render()
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						fmt.Println()
						return <-streamErr
					}
					w.apply(ev)
				case k, ok := <-keys:
					if !ok || k == 'q' || k == ui.KeyEsc {
						cancel()
						fmt.Println()
						return nil
					}
					if k == 't' {
						w.apply(scale.Event{Kind: scale.EventTare})
					}
				case <-w.labelReset():
					w.label = ""
					w.render()
				}
			}
		},
	}

	cmd.Flags().IntVar(&baud, "baud", config.DefaultBaud, "serial baud rate")
	return cmd
}

// watcher owns the scale for the console loop; only the loop goroutine touches it.
type watcher struct {
	scale      *scale.Scale
	state      scale.DisplayState
	label      scale.TareAction
	labelDelay time.Duration
	labelAt    time.Time
	out        io.Writer
}

func (w *watcher) apply(ev scale.Event) {
	res, err := scale.Apply(w.scale, ev)
	if err != nil {
		ui.Warningf("\n%v\n", err)
		return
	}
	if !res.Handled {
		return
	}
	w.state = res.State
	if res.Tare != "" {
		w.label = res.Tare
		w.labelAt = time.Now().Add(w.labelDelay)
	}
	w.render()
}

// labelReset fires when the tare caption should return to rest; nil when
// no caption is showing.
func (w *watcher) labelReset() <-chan time.Time {
	if w.label == "" {
		return nil
	}
	return time.After(time.Until(w.labelAt))
}

func (w *watcher) render() {
	ui.ClearLine(w.out)
	fmt.Fprintf(w.out, "%s  [%s]  force %.2f", ui.FormatDisplay(w.state), ui.TareLabel(w.label), w.scale.Force())
}
