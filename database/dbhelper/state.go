package dbhelper

import (
	"context"
	"database/sql"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func GetValue(ctx context.Context, db SQLExecutor, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM client_state WHERE key = $1`, key).Scan(&value)
	return value, err
}

func SetValue(ctx context.Context, db SQLExecutor, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	return err
}

func DeleteValue(ctx context.Context, db SQLExecutor, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM client_state WHERE key = $1`, key)
	return err
}
