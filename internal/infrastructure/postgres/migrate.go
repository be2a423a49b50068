package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica el esquema embebido con golang-migrate.
type Migrator struct {
	migrate *migrate.Migrate
	db      *sql.DB
	log     zerolog.Logger
}

// NewMigrator abre una conexión database/sql (driver pgx) dedicada a migraciones.
func NewMigrator(ctx context.Context, databaseURL string, log zerolog.Logger) (*Migrator, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable:  "schema_migrations",
		StatementTimeout: 10 * time.Minute,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration instance: %w", err)
	}
	return &Migrator{migrate: m, db: db, log: log.With().Str("component", "migrator").Logger()}, nil
}

// Up aplica todas las migraciones pendientes. Un esquema sucio se reporta, no se fuerza.
func (m *Migrator) Up() error {
	version, dirty, err := m.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("esquema sucio en la versión %d", version)
	}
	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info().Uint("version", version).Msg("sin migraciones pendientes")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}
	if v, _, err := m.migrate.Version(); err == nil {
		m.log.Info().Uint("version", v).Msg("migraciones aplicadas")
	}
	return nil
}

// Down revierte todo el esquema (uso en pruebas y herramientas).
func (m *Migrator) Down() error {
	if err := m.migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}
	return nil
}

// Close libera la fuente y la conexión.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil || dbErr != nil {
		return fmt.Errorf("close migrator: source: %v, db: %v", sourceErr, dbErr)
	}
	return nil
}
