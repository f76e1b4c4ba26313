package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/database/dbhelper"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore persists session keys in a client_state table, for kiosk
// deployments where several terminals share one merchant session.
type PostgresStore struct {
	db *sql.DB
}

// ConnectAndMigrate opens the database and brings the schema up to date.
func ConnectAndMigrate(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: %w", err)
	}
	logrus.Debug("keystore migrations applied")
	return nil
}

// Tx runs fn inside a transaction, rolling back when fn fails.
func (p *PostgresStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start a transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollBackErr := tx.Rollback(); rollBackErr != nil {
				logrus.WithError(rollBackErr).Error("failed to rollback tx")
			}
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			logrus.WithError(commitErr).Error("failed to commit tx")
			err = commitErr
		}
	}()
	err = fn(tx)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := dbhelper.GetValue(ctx, p.db, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	return dbhelper.SetValue(ctx, p.db, key, value)
}

func (p *PostgresStore) Remove(ctx context.Context, key string) error {
	return dbhelper.DeleteValue(ctx, p.db, key)
}

// Clear removes every key in one transaction.
func (p *PostgresStore) Clear(ctx context.Context, keys ...string) error {
	return p.Tx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if err := dbhelper.DeleteValue(ctx, tx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
