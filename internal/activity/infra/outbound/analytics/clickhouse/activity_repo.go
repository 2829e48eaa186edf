package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	activityDomain "github.com/davicafu/devcamper/internal/activity/domain"
)

// ActivityRepo guarda en ClickHouse el registro de eventos de integración.
type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(ctx context.Context, addr string, dbName string) (*ActivityRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &ActivityRepo{db: conn}, nil
}

// EnsureSchema crea la tabla si no existe. Particionada por mes y ordenada por topic.
func (r *ActivityRepo) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS activity_log (
			event_id     String,
			event_type   LowCardinality(String),
			topic        LowCardinality(String),
			aggregate_id String,
			event_time   DateTime64(3)
		) ENGINE = ReplacingMergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (topic, event_time, event_id);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// LogBatch inserta el lote en una única transacción; ClickHouse trabaja mejor con inserciones grandes.
func (r *ActivityRepo) LogBatch(ctx context.Context, batch []activityDomain.Activity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO activity_log (event_id, event_type, topic, aggregate_id, event_time)")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, a := range batch {
		if _, err := stmt.ExecContext(ctx, a.EventID, a.Type, a.Topic, a.AggregateID, a.OccurredAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to exec statement for event %s: %w", a.EventID, err)
		}
	}
	return tx.Commit()
}

func (r *ActivityRepo) GetDailyTrend(ctx context.Context, start, end time.Time) ([]activityDomain.DailyActivity, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			topic,
			countIf(endsWith(event_type, '.created')) AS created,
			countIf(endsWith(event_type, '.updated')) AS updated,
			countIf(endsWith(event_type, '.deleted')) AS deleted
		FROM activity_log FINAL
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day, topic
		ORDER BY day, topic
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []activityDomain.DailyActivity
	for rows.Next() {
		var d activityDomain.DailyActivity
		if err := rows.Scan(&d.Day, &d.Topic, &d.Created, &d.Updated, &d.Deleted); err != nil {
			return nil, err
		}
		trend = append(trend, d)
	}
	return trend, rows.Err()
}

func (r *ActivityRepo) Close() error {
	return r.db.Close()
}

var _ activityDomain.ActivityRepository = (*ActivityRepo)(nil)
