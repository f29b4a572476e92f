package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dbusexplorer/internal/config"
	"dbusexplorer/internal/handler"
	"dbusexplorer/internal/hub"
	"dbusexplorer/internal/logger"
	"dbusexplorer/internal/service"
	"dbusexplorer/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.serve(ctx)
		},
	}

	serveCmd.Flags().String("addr", "", "HTTP listen address (default from config, 127.0.0.1:2001)")
	serveCmd.Flags().String("base-path", "", "URL prefix of every route (default /local/dbus_explorer)")
	return serveCmd
}

// serve runs the HTTP server, the SSE hub and the config watcher until ctx
// is done or one of them fails
func (a *App) serve(ctx context.Context) error {
	events := service.NewEventBus()
	explorer := a.explorer()
	explorer.SetEventPublisher(events)

	sseHub := hub.New()
	eventCh := make(chan service.Event, 100)
	events.Subscribe(eventCh)

	explorerHandler, err := handler.NewExplorerHandler(explorer, a.cfg.Server.BasePath)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	explorerHandler.Register(mux)
	mux.Handle("GET "+a.cfg.Server.BasePath+"/events", sseHub)

	server := &http.Server{
		Addr:        a.cfg.Server.Addr,
		Handler:     handler.Chain(mux, handler.Recover, handler.Logger),
		ReadTimeout: 10 * time.Second,
		// No write timeout: SSE streams stay open and a full walk may be slow
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sseHub.Run(gctx)
	})

	g.Go(func() error {
		for {
			select {
			case event := <-eventCh:
				sseHub.Broadcast(event)
			case <-gctx.Done():
				return nil
			}
		}
	})

	if a.cfgPath != "" {
		w := watcher.New(a.cfgPath, func() { a.reload(events) })
		g.Go(func() error {
			if err := w.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
				logrus.Warnf("config watcher stopped: %v", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		logrus.Infof("D-Bus Explorer listening on http://%s%s/app", a.cfg.Server.Addr, a.cfg.Server.BasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logrus.Info("server stopped")
	return err
}

// reload re-reads the config file. Only the log level takes effect without a
// restart.
func (a *App) reload(events service.EventPublisher) {
	cfg, _, err := config.LoadFromPath(a.cfgPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logrus.Warnf("ignoring invalid config %s: %v", a.cfgPath, err)
		return
	}

	if !a.debug {
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			logrus.Warnf("failed to apply log level: %v", err)
			return
		}
	}
	if cfg.Server != a.cfg.Server || cfg.Bus != a.cfg.Bus {
		logrus.Warn("server and bus settings change on restart only")
	}

	logrus.Infof("config reloaded from %s (log level %s)", a.cfgPath, cfg.Log.Level)
	events.Publish(service.Event{
		Type:    service.EventConfigReloaded,
		Payload: map[string]string{"path": a.cfgPath, "log_level": cfg.Log.Level},
	})
}
