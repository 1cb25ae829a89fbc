package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"netscan/api"
	"netscan/internal/announce"
	"netscan/internal/config"
	"netscan/internal/history"
	"netscan/internal/logger"
	"netscan/internal/network"
	"netscan/internal/results"
	"netscan/internal/runner"
	"netscan/internal/scan"
)

// application holds the long-lived components of the service
type application struct {
	cfg       *config.Config
	history   history.Store
	announcer *announce.Announcer
	server    *http.Server
}

func newLister(cfg *config.Config) (*network.Lister, error) {
	source, err := network.NewSource(cfg.Network.LinkSource, runner.NewExecRunner(), cfg.Network.IPCommand)
	if err != nil {
		return nil, err
	}
	return network.NewLister(source, cfg.GetNetworkTimeout()), nil
}

func newApp(ctx context.Context, cfg *config.Config) (*application, error) {
	lister, err := newLister(cfg)
	if err != nil {
		return nil, err
	}

	store, err := history.Open(ctx, cfg.History.Driver, cfg.History.DSN, cfg.History.Size)
	if err != nil {
		return nil, err
	}

	invoker := scan.NewInvoker(scan.Options{
		ScriptPath:       cfg.ScriptPath(),
		ScanType:         cfg.Scan.ScanType,
		Timeout:          cfg.GetScanTimeout(),
		PrivilegeCommand: cfg.Privilege.Command,
		PrivilegeArgs:    cfg.Privilege.Args,
		MaxConcurrent:    cfg.Scan.MaxConcurrent,
	}, lister, runner.NewExecRunner(), store)

	if !invoker.ScriptAvailable() {
		logger.Warnf("Scan script not found at %s; scan requests will fail until it exists", cfg.ScriptPath())
	}

	router := api.NewRouter(api.Dependencies{
		Lister:      lister,
		Invoker:     invoker,
		History:     store,
		Results:     results.NewFile(cfg.ResultsPath()),
		IndexPath:   cfg.IndexPath(),
		ScanLimiter: api.NewScanLimiter(cfg.Scan.RateLimit, cfg.Scan.Burst),
	})

	app := &application{
		cfg:     cfg,
		history: store,
		server: &http.Server{
			Addr:              cfg.Service.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      cfg.GetWriteTimeout(),
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	if cfg.MDNS.Enabled {
		app.announcer, err = announce.NewAnnouncer(cfg.MDNS.Instance, cfg.MDNS.Service, cfg.Service.Addr)
		if err != nil {
			store.Close()
			return nil, err
		}
	}
	return app, nil
}

// run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (app *application) run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer app.cleanup()

	if app.announcer != nil {
		if err := app.announcer.Start(); err != nil {
			logger.Warnf("mDNS announcement disabled: %v", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting %s on http://%s", app.cfg.Service.Name, app.cfg.Service.Addr)
		logger.Infof("Scan script: %s (timeout %v)", app.cfg.ScriptPath(), app.cfg.GetScanTimeout())
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down HTTP server: %w", err)
	}
	return nil
}

func (app *application) cleanup() {
	if app.announcer != nil {
		if err := app.announcer.Stop(); err != nil {
			logger.Warnf("Error stopping mDNS: %v", err)
		}
	}
	if err := app.history.Close(); err != nil {
		logger.Warnf("Error closing history store: %v", err)
	}
}
