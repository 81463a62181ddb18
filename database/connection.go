package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// connectTimeout bounds the connectivity probe
const connectTimeout = 5 * time.Second

// VerifyConnection opens a short-lived direct connection, pings it and
// closes it again. It does not share the GORM pool, so a failure here means
// the server itself is unreachable or rejects the credentials.
func VerifyConnection(ctx context.Context, dsn string) error {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
