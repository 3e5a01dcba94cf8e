package db

import (
	"context"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the shared Postgres connection pool, nil when the alert archive is
// disabled (no DATABASE_URL).
var Pool *pgxpool.Pool

var openPool = pgxpool.New

// InitPostgres connects to Postgres when dsn is set. The archive is an
// optional surface: persistence of monitor state lives in the JSON files, so
// a missing or unreachable database only disables alert history.
func InitPostgres(ctx context.Context, dsn string) {
	if strings.TrimSpace(dsn) == "" {
		log.Println("DATABASE_URL not set, alert archive disabled")
		return
	}

	pool, err := openPool(ctx, dsn)
	if err != nil {
		log.Printf("postgres connect failed, alert archive disabled: %v", err)
		return
	}
	if err := pool.Ping(ctx); err != nil {
		log.Printf("postgres unreachable, alert archive disabled: %v", err)
		pool.Close()
		return
	}

	Pool = pool
	log.Println("Connected to Postgres")
}
