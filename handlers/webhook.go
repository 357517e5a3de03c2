package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// MaxEventBytes caps a single webhook body.
const MaxEventBytes = 100 << 10

// HandleWebhook receives platform events. Payloads carrying a bucket field
// are recorded; everything else, malformed or oversized bodies included, is
// acknowledged and dropped.
func (h *DemoHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxEventBytes))
	if err != nil {
		log.WithError(err).Warn("Failed to read webhook body")
		c.Status(http.StatusOK)
		return
	}

	if h.events.Append(body) {
		log.WithField("events", h.events.Len()).Info("Recorded platform event")
	} else {
		log.WithField("bytes", len(body)).Debug("Ignored webhook payload without bucket")
	}

	c.Status(http.StatusOK)
}

func (h *DemoHandler) HandleListEvents(c *gin.Context) {
	data, err := json.Marshal(h.events.List())
	if err != nil {
		log.WithError(err).Error("Failed to encode events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
