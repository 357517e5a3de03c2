package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
)

// Files read for values missing from the real environment, in priority order.
var envFiles = []string{"my.env", "my.env.defaults", ".env"}

type Config struct {
	// Server
	Port           string
	GinMode        string
	PublicDir      string
	TrustedProxies []string
	EchoRequest    bool

	// Client
	AppName        string
	ClientVersion  string
	ClientTitle    string
	WelcomeMessage string
	WelcomeImage   string
	Region         string

	// Workload
	FiboNumber int

	// Database demo
	DBEnabled    bool
	DBDriver     string
	DBHost       string
	DBPort       int
	DBUser       string
	DBPassword   string
	DBName       string
	DBCollection string

	// Logging
	LogLevel  log.Level
	LogFormat string
}

func Load() (*Config, error) {
	// godotenv never overrides variables that are already set, so the first
	// file to define a key wins and the process environment beats them all.
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		PublicDir:      getEnv("PUBLIC_DIR", "public"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		AppName:        getEnv("APP_NAME", "platform-demo"),
		ClientVersion:  getEnv("CLIENT_VERSION", ""),
		ClientTitle:    getEnv("CLIENT_TITLE", ""),
		WelcomeMessage: getEnv("WELCOME_MESSAGE", ""),
		WelcomeImage:   getEnv("WELCOME_IMAGE", ""),
		Region:         getEnv("REGION", ""),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBUser:         getEnv("DB_USER", ""),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "demo"),
		DBCollection:   getEnv("DB_COLLECTION", "probes"),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.FiboNumber, err = getEnvInt("FIBO_NUMBER", 30); err != nil {
		return nil, err
	}
	if cfg.EchoRequest, err = getEnvBool("ECHO_REQUEST", false); err != nil {
		return nil, err
	}
	if cfg.DBEnabled, err = getEnvBool("DB_ENABLED", false); err != nil {
		return nil, err
	}

	defaultPort := 27017
	if cfg.DBDriver == DriverPostgres {
		defaultPort = 5432
	}
	if cfg.DBPort, err = getEnvInt("DB_PORT", defaultPort); err != nil {
		return nil, err
	}

	if cfg.LogLevel, err = log.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	// gin panics on any other mode.
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("GIN_MODE must be %s, %s or %s, got %q", gin.DebugMode, gin.ReleaseMode, gin.TestMode, c.GinMode)
	}
	switch c.DBDriver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverMongo, DriverPostgres, c.DBDriver)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// DBAddr returns host:port of the configured database.
func (c *Config) DBAddr() string {
	return c.DBHost + ":" + strconv.Itoa(c.DBPort)
}

// ConfigureLogging applies the logging settings to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
