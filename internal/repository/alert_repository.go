package repository

import (
	"context"

	"crypto-watchtower/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createAlertsTable = `
CREATE TABLE IF NOT EXISTS alerts (
    id          BIGSERIAL   PRIMARY KEY,
    kind        TEXT        NOT NULL,
    asset       TEXT        NOT NULL DEFAULT '',
    body        TEXT        NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_alerts_created_at
    ON alerts (created_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AlertRepository archives every emitted notification so the HTTP API can
// serve recent alert history. It is optional; callers hold a nil repository
// when no database is configured.
type AlertRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAlertRepository(pool PgxPool, tracer trace.Tracer) *AlertRepository {
	return &AlertRepository{pool: pool, tracer: tracer}
}

func (r *AlertRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "alert-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createAlertsTable)
	return err
}

func (r *AlertRepository) Insert(ctx context.Context, alert domain.Alert) error {
	_, span := r.tracer.Start(ctx, "alert-repo.insert")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO alerts (kind, asset, body, created_at) VALUES ($1, $2, $3, $4)`,
		alert.Kind, alert.Asset, alert.Text, alert.CreatedAt,
	)
	return err
}

func (r *AlertRepository) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	_, span := r.tracer.Start(ctx, "alert-repo.list-recent")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, asset, body, created_at
		 FROM alerts
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.Kind, &a.Asset, &a.Text, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
