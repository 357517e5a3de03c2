package handler

import (
	"errors"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/platformdemo/backend/config"
	"github.com/platformdemo/backend/handlers"
	"github.com/platformdemo/backend/services"
)

// crashDelay gives the runtime time to send the /crashPod reply, which it
// only does once Handler has returned.
const crashDelay = 500 * time.Millisecond

// instance is one warm function instance, reused across invocations.
type instance struct {
	once    sync.Once
	engine  *gin.Engine
	initErr error
	crashed atomic.Bool

	exit       func(code int)
	crashDelay time.Duration
}

var current = &instance{exit: os.Exit, crashDelay: crashDelay}

func (in *instance) init() {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Panic while initializing services")
			in.initErr = errors.New("service initialization panicked")
		}
		if in.initErr == nil && in.engine == nil {
			in.initErr = errors.New("service initialization produced no engine")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		in.initErr = err
		return
	}
	cfg.ConfigureLogging()

	hostname, err := os.Hostname()
	if err != nil {
		log.WithError(err).Warn("Failed to resolve hostname")
		hostname = "unknown"
	}

	var prober services.Prober
	if cfg.DBEnabled {
		if prober, err = services.NewProber(cfg, hostname); err != nil {
			in.initErr = err
			return
		}
	}

	demo := handlers.NewDemoHandler(cfg, hostname, services.NewEventLog(), prober, in.crash)
	in.engine, in.initErr = handlers.NewEngine(cfg, demo)
	if in.initErr == nil {
		log.WithField("app", cfg.AppName).Info("Services initialized successfully")
	}
}

// crash schedules the exit so it lands after ServeHTTP has returned and the
// platform has flushed the response.
func (in *instance) crash() {
	if !in.crashed.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(in.crashDelay, func() {
		log.Error("Crash endpoint called, exiting")
		in.exit(1)
	})
}

func (in *instance) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	in.once.Do(in.init)
	if in.initErr != nil {
		log.WithError(in.initErr).Error("Failed to initialize services")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	in.engine.ServeHTTP(w, r)
}

// Handler is the serverless function entry point for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	current.ServeHTTP(w, r)
}
