package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// OutboxRepoSQL implementa sharedDomain.OutboxRepository para SQLite y Postgres.
type OutboxRepoSQL struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ sharedDomain.OutboxRepository = (*OutboxRepoSQL)(nil)

func NewOutboxRepoSQL(db *sql.DB, d Dialect) *OutboxRepoSQL {
	return &OutboxRepoSQL{db: db, sb: d.Builder()}
}

// InsertOutboxTx escribe el evento dentro de la transacción del agregado.
func InsertOutboxTx(ctx context.Context, tx *sql.Tx, sb sq.StatementBuilderType, evt sharedDomain.OutboxEvent) error {
	payloadBytes, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	query, args, err := sb.Insert("outbox").
		Columns("id", "aggregate_type", "aggregate_id", "event_type", "payload", "created_at", "processed").
		Values(evt.ID.String(), evt.AggregateType, evt.AggregateID, evt.EventType, string(payloadBytes), evt.CreatedAt, false).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// FetchPendingOutbox obtiene los eventos no procesados, los más antiguos primero.
func (r *OutboxRepoSQL) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	query, args, err := r.sb.
		Select("id", "aggregate_type", "aggregate_id", "event_type", "payload", "created_at").
		From("outbox").
		Where(sq.Eq{"processed": false}).
		OrderBy("created_at").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []sharedDomain.OutboxEvent
	for rows.Next() {
		var (
			evt       sharedDomain.OutboxEvent
			idStr     string
			payload   string
			createdAt time.Time
		)
		if err := rows.Scan(&idStr, &evt.AggregateType, &evt.AggregateID, &evt.EventType, &payload, &createdAt); err != nil {
			return nil, err
		}
		if evt.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("invalid UUID in outbox: %w", err)
		}
		evt.Payload = json.RawMessage(payload)
		evt.CreatedAt = createdAt
		events = append(events, evt)
	}
	return events, rows.Err()
}

// MarkOutboxProcessed marca un evento como procesado.
func (r *OutboxRepoSQL) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	return r.mark(ctx, id, map[string]interface{}{"processed": true})
}

// MarkOutboxFailed lo deja fuera del polling con failed=true y el motivo.
func (r *OutboxRepoSQL) MarkOutboxFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.mark(ctx, id, map[string]interface{}{"processed": true, "failed": true, "last_error": reason})
}

func (r *OutboxRepoSQL) mark(ctx context.Context, id uuid.UUID, set map[string]interface{}) error {
	query, args, err := r.sb.Update("outbox").
		SetMap(set).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get RowsAffected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("outbox event not found: %s", id)
	}
	return nil
}
