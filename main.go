package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/platformdemo/backend/config"
	"github.com/platformdemo/backend/handlers"
	"github.com/platformdemo/backend/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ConfigureLogging()

	hostname, err := os.Hostname()
	if err != nil {
		log.WithError(err).Warn("Failed to resolve hostname")
		hostname = "unknown"
	}

	log.WithFields(log.Fields{
		"app":            cfg.AppName,
		"client_version": cfg.ClientVersion,
		"client_title":   cfg.ClientTitle,
		"region":         cfg.Region,
		"fibo_number":    cfg.FiboNumber,
	}).Info("Here we go! Starting up")

	// Database demo is optional
	var prober services.Prober
	if cfg.DBEnabled {
		prober, err = services.NewProber(cfg, hostname)
		if err != nil {
			log.Fatalf("Failed to initialize database prober: %v", err)
		}
		log.WithFields(log.Fields{"driver": cfg.DBDriver, "addr": cfg.DBAddr()}).Info("Database demo enabled")
	}

	crash, crashed := newCrashHook()

	demo := handlers.NewDemoHandler(cfg, hostname, services.NewEventLog(), prober, crash)
	engine, err := handlers.NewEngine(cfg, demo)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Infof("App is listening on port %s", cfg.Port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	if code := run(srv, ln, stop, crashed); code != 0 {
		os.Exit(code)
	}
	log.Info("Server stopped")
}

// newCrashHook returns an idempotent hook and the channel it closes.
func newCrashHook() (func(), <-chan struct{}) {
	crashed := make(chan struct{})
	var once sync.Once
	return func() { once.Do(func() { close(crashed) }) }, crashed
}

// run serves on ln until a signal arrives or the crash hook fires, then
// drains the server. It returns the process exit code.
func run(srv *http.Server, ln net.Listener, stop <-chan os.Signal, crashed <-chan struct{}) int {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("Server failed")
		}
		return 1
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("Shutting down")
	case <-crashed:
		log.Error("Crash endpoint called, exiting")
		exitCode = 1
	}

	// Shutdown waits for in-flight responses, including the /crashPod reply.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown did not complete")
		exitCode = 1
	}
	return exitCode
}
