package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"github.com/platformdemo/backend/config"
)

type PostgresProber struct {
	cfg      *config.Config
	hostname string
}

func NewPostgresProber(cfg *config.Config, hostname string) *PostgresProber {
	return &PostgresProber{cfg: cfg, hostname: hostname}
}

func (p *PostgresProber) connString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   p.cfg.DBAddr(),
		Path:   "/" + p.cfg.DBName,
	}
	if p.cfg.DBUser != "" {
		u.User = url.UserPassword(p.cfg.DBUser, p.cfg.DBPassword)
	}
	q := url.Values{}
	q.Set("connect_timeout", strconv.Itoa(int(ProbeTimeout.Seconds())))
	q.Set("application_name", p.cfg.AppName)
	u.RawQuery = q.Encode()
	return u.String()
}

// Probe connects, inserts a ProbeRecord row and closes the connection.
func (p *PostgresProber) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, p.connString())
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to close Postgres connection")
		}
	}()

	table := pgx.Identifier{p.cfg.DBCollection}.Sanitize()
	ddl := `CREATE TABLE IF NOT EXISTS ` + table + ` (
		id         BIGSERIAL PRIMARY KEY,
		app        TEXT NOT NULL,
		hostname   TEXT NOT NULL,
		region     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create probe table: %w", err)
	}

	rec := newProbeRecord(p.cfg, p.hostname)
	var id int64
	err = conn.QueryRow(ctx,
		`INSERT INTO `+table+` (app, hostname, region, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		rec.App, rec.Hostname, rec.Region, rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert probe record: %w", err)
	}

	log.WithFields(log.Fields{
		"addr":  p.cfg.DBAddr(),
		"table": p.cfg.DBCollection,
		"id":    id,
	}).Info("Postgres probe succeeded")
	return nil
}
