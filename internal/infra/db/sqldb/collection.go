package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
)

// ErrUnknownField se devuelve cuando la consulta nombra un campo fuera de la lista blanca.
var ErrUnknownField = errors.New("unknown field")

// QueryCollection expone una tabla como sharedQuery.Collection.
// Solo los campos de Fields (nombre público -> columna) se pueden filtrar, ordenar o seleccionar;
// el resto de columnas nunca salen de la tabla.
type QueryCollection struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	table  string
	fields map[string]string
	order  []string
}

var _ sharedQuery.Collection = (*QueryCollection)(nil)

// NewQueryCollection recibe los campos como pares ordenados {público, columna}.
func NewQueryCollection(db *sql.DB, d Dialect, table string, fields [][2]string) *QueryCollection {
	q := &QueryCollection{db: db, sb: d.Builder(), table: table, fields: make(map[string]string, len(fields))}
	for _, f := range fields {
		q.fields[f[0]] = f[1]
		q.order = append(q.order, f[0])
	}
	return q
}

func (q *QueryCollection) column(field string) (string, error) {
	col, ok := q.fields[field]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	return col, nil
}

func (q *QueryCollection) where(conds []sharedDomain.Criterion) (sq.And, error) {
	var and sq.And
	for _, c := range conds {
		col, err := q.column(c.Field)
		if err != nil {
			return nil, err
		}
		switch c.Op {
		case sharedDomain.OpGt:
			and = append(and, sq.Gt{col: c.Value})
		case sharedDomain.OpGte:
			and = append(and, sq.GtOrEq{col: c.Value})
		case sharedDomain.OpLt:
			and = append(and, sq.Lt{col: c.Value})
		case sharedDomain.OpLte:
			and = append(and, sq.LtOrEq{col: c.Value})
		default:
			// sq.Eq con un slice genera IN (...)
			and = append(and, sq.Eq{col: preferText(c.Value)})
		}
	}
	return and, nil
}

func (q *QueryCollection) Find(ctx context.Context, spec sharedQuery.FindSpec) ([]sharedQuery.Document, error) {
	if len(spec.Populate) > 0 {
		return nil, errors.New("populate is not supported on sql collections")
	}

	fields := spec.Select
	if len(fields) == 0 {
		fields = q.order
	} else if _, ok := q.fields[sharedQuery.IDField]; ok {
		fields = append([]string{sharedQuery.IDField}, fields...)
	}
	fields = dedupe(fields)

	cols := make([]string, len(fields))
	for i, f := range fields {
		col, err := q.column(f)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	where, err := q.where(spec.Conditions)
	if err != nil {
		return nil, err
	}
	builder := q.sb.Select(cols...).From(q.table)
	if len(where) > 0 {
		builder = builder.Where(where)
	}
	for _, s := range spec.Sort {
		col, err := q.column(s.Field)
		if err != nil {
			return nil, err
		}
		if s.Desc {
			col += " DESC"
		}
		builder = builder.OrderBy(col)
	}
	if spec.Limit > 0 {
		builder = builder.Limit(uint64(spec.Limit))
	}
	if spec.Skip > 0 {
		builder = builder.Offset(uint64(spec.Skip))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]sharedQuery.Document, 0)
	for rows.Next() {
		values := make([]interface{}, len(fields))
		ptrs := make([]interface{}, len(fields))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		doc := make(sharedQuery.Document, len(fields))
		for i, f := range fields {
			if b, ok := values[i].([]byte); ok {
				doc[f] = string(b)
				continue
			}
			doc[f] = values[i]
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (q *QueryCollection) Count(ctx context.Context, conds []sharedDomain.Criterion) (int64, error) {
	where, err := q.where(conds)
	if err != nil {
		return 0, err
	}
	builder := q.sb.Select("COUNT(*)").From(q.table)
	if len(where) > 0 {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// preferText quita de una lista IN las versiones tipadas de un valor que ya viene como texto:
// la columna convierte el texto a su propio tipo, y el driver no tiene que mezclar tipos.
func preferText(v interface{}) interface{} {
	list, ok := v.([]interface{})
	if !ok {
		return v
	}
	texts := make(map[string]bool, len(list))
	for _, el := range list {
		if s, ok := el.(string); ok {
			texts[s] = true
		}
	}
	out := make([]interface{}, 0, len(list))
	for _, el := range list {
		if _, isText := el.(string); !isText && texts[fmt.Sprint(el)] {
			continue
		}
		out = append(out, el)
	}
	return out
}
