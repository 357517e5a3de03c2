package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/platformdemo/backend/config"
)

type MongoProber struct {
	cfg      *config.Config
	hostname string
}

func NewMongoProber(cfg *config.Config, hostname string) *MongoProber {
	return &MongoProber{cfg: cfg, hostname: hostname}
}

func (p *MongoProber) clientOptions() *options.ClientOptions {
	opts := options.Client().
		SetHosts([]string{p.cfg.DBAddr()}).
		SetAppName(p.cfg.AppName).
		SetConnectTimeout(ProbeTimeout).
		SetServerSelectionTimeout(ProbeTimeout)
	if p.cfg.DBUser != "" {
		opts.SetAuth(options.Credential{
			Username: p.cfg.DBUser,
			Password: p.cfg.DBPassword,
		})
	}
	return opts
}

// Probe connects, inserts a ProbeRecord and disconnects.
func (p *MongoProber) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, p.clientOptions())
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()

	// Connect is lazy; ping so an unreachable host fails here.
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(p.cfg.DBName).Collection(p.cfg.DBCollection)
	result, err := coll.InsertOne(ctx, newProbeRecord(p.cfg, p.hostname))
	if err != nil {
		return fmt.Errorf("failed to insert probe record: %w", err)
	}

	log.WithFields(log.Fields{
		"addr":       p.cfg.DBAddr(),
		"collection": p.cfg.DBCollection,
		"id":         result.InsertedID,
	}).Info("MongoDB probe succeeded")
	return nil
}
