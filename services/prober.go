package services

import (
	"context"
	"fmt"
	"time"

	"github.com/platformdemo/backend/config"
)

// ProbeTimeout bounds a whole connect/insert/close round trip.
const ProbeTimeout = 10 * time.Second

// Prober checks database connectivity by opening a fresh connection,
// writing one fixed document and closing the connection again.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProbeRecord is the fixed document written by every probe.
type ProbeRecord struct {
	App       string    `bson:"app" json:"app"`
	Hostname  string    `bson:"hostname" json:"hostname"`
	Region    string    `bson:"region" json:"region"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func newProbeRecord(cfg *config.Config, hostname string) ProbeRecord {
	return ProbeRecord{
		App:       cfg.AppName,
		Hostname:  hostname,
		Region:    cfg.Region,
		CreatedAt: time.Now().UTC(),
	}
}

// NewProber picks the implementation matching cfg.DBDriver.
func NewProber(cfg *config.Config, hostname string) (Prober, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		return NewMongoProber(cfg, hostname), nil
	case config.DriverPostgres:
		return NewPostgresProber(cfg, hostname), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}
