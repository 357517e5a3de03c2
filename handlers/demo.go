package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/platformdemo/backend/config"
	"github.com/platformdemo/backend/services"
)

// DemoHandler holds the application state shared by every route.
type DemoHandler struct {
	cfg      *config.Config
	hostname string
	events   *services.EventLog
	prober   services.Prober
	crash    func()
}

// NewDemoHandler wires the handler. prober may be nil when the database demo
// is disabled; crash is called once the /crashPod response has been flushed.
func NewDemoHandler(cfg *config.Config, hostname string, events *services.EventLog, prober services.Prober, crash func()) *DemoHandler {
	if events == nil {
		events = services.NewEventLog()
	}
	if crash == nil {
		crash = func() {}
	}
	return &DemoHandler{
		cfg:      cfg,
		hostname: hostname,
		events:   events,
		prober:   prober,
		crash:    crash,
	}
}

func (h *DemoHandler) Register(r gin.IRoutes) {
	r.GET("/health", h.HandleHealth)
	r.GET("/getEnvironment", h.HandleEnvironment)
	r.GET("/senderror", h.HandleSendError)
	r.GET("/fibo", h.HandleFibo)
	r.GET("/crashPod", h.HandleCrash)
	r.GET("/getevents", h.HandleListEvents)
	r.POST("/", h.HandleWebhook)
	if h.prober != nil {
		r.GET("/connectToDb", h.HandleConnectToDB)
	}
}

func (h *DemoHandler) HandleHealth(c *gin.Context) {
	health := gin.H{"health": "OK"}
	log.WithField("response", health).Debug("Service health returning")
	c.JSON(http.StatusOK, health)
}

type requestInfo struct {
	Method   string              `json:"method"`
	URL      string              `json:"url"`
	Protocol string              `json:"protocol"`
	Host     string              `json:"host"`
	Headers  map[string][]string `json:"headers"`
}

type environmentResponse struct {
	Hostname       string       `json:"hostname"`
	Region         string       `json:"region"`
	ClientTitle    string       `json:"client_title"`
	ClientVersion  string       `json:"client_version"`
	AppName        string       `json:"app_name"`
	WelcomeMessage string       `json:"welcome_message"`
	WelcomeImage   string       `json:"welcome_image"`
	ClientIP       string       `json:"client_ip,omitempty"`
	Request        *requestInfo `json:"request,omitempty"`
}

func (h *DemoHandler) HandleEnvironment(c *gin.Context) {
	resp := environmentResponse{
		Hostname:       h.hostname,
		Region:         h.cfg.Region,
		ClientTitle:    h.cfg.ClientTitle,
		ClientVersion:  h.cfg.ClientVersion,
		AppName:        h.cfg.AppName,
		WelcomeMessage: h.cfg.WelcomeMessage,
		WelcomeImage:   h.cfg.WelcomeImage,
	}

	if h.cfg.EchoRequest {
		resp.ClientIP = c.ClientIP()
		resp.Request = &requestInfo{
			Method:   c.Request.Method,
			URL:      c.Request.URL.String(),
			Protocol: h.scheme(c),
			Host:     c.Request.Host,
			Headers:  c.Request.Header,
		}
	}

	log.WithField("hostname", resp.Hostname).Info("Service getEnvironment returning")
	c.JSON(http.StatusOK, resp)
}

// scheme honours X-Forwarded-Proto only when trusted proxies are configured.
func (h *DemoHandler) scheme(c *gin.Context) string {
	if len(h.cfg.TrustedProxies) > 0 {
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			return proto
		}
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

func (h *DemoHandler) HandleSendError(c *gin.Context) {
	log.Error("Test error message - No real error has occurred.")
	c.JSON(http.StatusOK, gin.H{"zero": "zero"})
}

func (h *DemoHandler) HandleFibo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fibo": services.Fibo(h.cfg.FiboNumber)})
}

// HandleCrash answers, flushes, then hands over to the crash hook so the
// caller always sees the body before the instance goes away.
func (h *DemoHandler) HandleCrash(c *gin.Context) {
	log.WithField("hostname", h.hostname).Warn("Crash requested, terminating after response")
	c.JSON(http.StatusOK, gin.H{"hostname": h.hostname})
	c.Writer.Flush()
	h.crash()
}

func (h *DemoHandler) HandleConnectToDB(c *gin.Context) {
	if err := h.prober.Probe(c.Request.Context()); err != nil {
		log.WithError(err).Error("Database probe failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dbconnect": true})
}
