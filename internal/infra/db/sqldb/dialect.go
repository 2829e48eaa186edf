package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Dialect agrupa lo que cambia entre SQLite y Postgres.
type Dialect struct {
	Driver      string // nombre para sql.Open
	goose       string
	Placeholder sq.PlaceholderFormat
}

// DialectFor admite "sqlite" (desarrollo local) y "pgx" (Postgres).
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return Dialect{Driver: "sqlite", goose: "sqlite3", Placeholder: sq.Question}, nil
	case "pgx", "postgres":
		return Dialect{Driver: "pgx", goose: "postgres", Placeholder: sq.Dollar}, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// Builder devuelve un squirrel con el placeholder del dialecto.
func (d Dialect) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

// Open abre la base y aplica las migraciones embebidas.
func Open(d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", d.Driver, err)
	}
	if err := Migrate(db, d); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(db *sql.DB, d Dialect) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(d.goose); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// WithTx ejecuta fn en una transacción; cualquier error la deshace.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// IsUniqueViolation reconoce la violación de índice único en Postgres y SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
