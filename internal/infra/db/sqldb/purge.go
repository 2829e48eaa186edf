package sqldb

import (
	"context"
	"database/sql"
	"fmt"
)

// TablePurger vacía las tablas indicadas en una sola transacción.
type TablePurger struct {
	db     *sql.DB
	d      Dialect
	tables []string
}

func NewTablePurger(db *sql.DB, d Dialect, tables ...string) *TablePurger {
	return &TablePurger{db: db, d: d, tables: tables}
}

func (p *TablePurger) Purge(ctx context.Context) error {
	return WithTx(ctx, p.db, func(tx *sql.Tx) error {
		for _, t := range p.tables {
			query, args, err := p.d.Builder().Delete(t).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("purge %s: %w", t, err)
			}
		}
		return nil
	})
}
