package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	tarm "github.com/tarm/serial"
	"golang.org/x/sync/errgroup"

	"github.com/CK6170/forcescale-go/internal/config"
	"github.com/CK6170/forcescale-go/internal/server"
	"github.com/CK6170/forcescale-go/scale"
	serialpkg "github.com/CK6170/forcescale-go/serial"
)

func NewServeCommand() *cobra.Command {
	var (
		addr       string
		web        string
		port       string
		baud       int
		autoDetect bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web scale and, optionally, a serial force sensor",
		Long: `Serve the web scale over HTTP and WebSocket.

Open the page in a browser with force touch support, or pass --serial to feed a
sensor board into the shared "device" session (/ws/scale?id=device).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("web") {
				cfg.WebRoot = web
			}
			if port != "" || autoDetect {
				cfg.Serial = &config.Serial{Port: port, Baud: baud}
			}
			return serve(cmd.Context(), cfg, autoDetect)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "http listen address")
	cmd.Flags().StringVar(&web, "web", config.DefaultWebRoot, "path to web root (index.html)")
	cmd.Flags().StringVar(&port, "serial", "", "serial port of a force sensor board")
	cmd.Flags().IntVar(&baud, "baud", config.DefaultBaud, "serial baud rate")
	cmd.Flags().BoolVar(&autoDetect, "auto-detect", false, "scan for a sensor board when --serial is empty")

	return cmd
}

func serve(parent context.Context, cfg *config.Config, autoDetect bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var port *tarm.Port
	if cfg.Serial != nil {
		name := cfg.SerialPort()
		if name == "" && autoDetect {
			logrus.Info("Scanning for a sensor board...")
			name = serialpkg.AutoDetectPort(cfg.Serial.Baud)
		}
		if name == "" {
			return pkgerrors.New("no serial port given and none detected")
		}
		p, err := serialpkg.Open(name, cfg.Serial.Baud)
		if err != nil {
			return pkgerrors.Wrapf(err, "open serial port %s", name)
		}
		defer p.Close()
		port = p
		logrus.WithFields(logrus.Fields{"port": name, "baud": cfg.Serial.Baud}).Info("Sensor board connected")
	}

	s := server.New(cfg)
	defer s.Close()
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: s.Handler()}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.WithFields(cfg.LogrusFields()).Infof("Serving on http://%s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return pkgerrors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if port != nil {
		g.Go(func() error {
			return s.RunSource(ctx, func(ctx context.Context, fn func(scale.Event), onBad func(error)) error {
				return serialpkg.Stream(ctx, port, fn, onBad)
			})
		})
	}

	return g.Wait()
}
