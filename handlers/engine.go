package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/platformdemo/backend/config"
)

// NewEngine builds the gin engine: recovery, request logging, trusted
// proxies, the demo routes and the static site as fallback.
func NewEngine(cfg *config.Config, h *DemoHandler) (*gin.Engine, error) {
	switch cfg.GinMode {
	case "":
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		return nil, fmt.Errorf("unknown gin mode %q", cfg.GinMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	h.Register(r)

	if cfg.PublicDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(gin.Dir(cfg.PublicDir, false))))
	}

	return r, nil
}

// RequestLogger replaces gin.Logger with one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("request")
	}
}
