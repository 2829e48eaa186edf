package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/davicafu/devcamper/internal/infra/db/sqldb"
	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

const usersTable = "users"

// ListingFields es la lista blanca del listado de usuarios (nombre público -> columna).
// La contraseña y el token de reseteo no aparecen: no se pueden ni filtrar ni seleccionar.
var ListingFields = [][2]string{
	{"_id", "id"},
	{"name", "name"},
	{"email", "email"},
	{"role", "role"},
	{"createdAt", "created_at"},
}

var userColumns = []string{
	"id", "name", "email", "role", "password", "reset_password_token", "reset_password_expire", "created_at",
}

// UserRepoSQL implementa UserRepository sobre SQLite o Postgres según el dialecto.
type UserRepoSQL struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ userDomain.UserRepository = (*UserRepoSQL)(nil)

func NewUserRepoSQL(db *sql.DB, d sqldb.Dialect) *UserRepoSQL {
	return &UserRepoSQL{db: db, sb: d.Builder()}
}

// NewUserListing devuelve la colección consultable del listado de admin.
func NewUserListing(db *sql.DB, d sqldb.Dialect) *sqldb.QueryCollection {
	return sqldb.NewQueryCollection(db, d, usersTable, ListingFields)
}

// ------------------ CRUD + Outbox ------------------

func (r *UserRepoSQL) Create(ctx context.Context, u *userDomain.User, evt sharedDomain.OutboxEvent) error {
	err := sqldb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args, err := r.sb.Insert(usersTable).
			Columns(userColumns...).
			Values(u.ID.String(), u.Name, u.Email, u.Role, u.Password, nullString(u.ResetPasswordToken), nullTime(u.ResetPasswordExpire), u.CreatedAt).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		return sqldb.InsertOutboxTx(ctx, tx, r.sb, evt)
	})
	if sqldb.IsUniqueViolation(err) {
		return userDomain.ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepoSQL) Update(ctx context.Context, u *userDomain.User, evt sharedDomain.OutboxEvent) error {
	err := sqldb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args, err := r.sb.Update(usersTable).
			Set("name", u.Name).
			Set("email", u.Email).
			Set("role", u.Role).
			Set("password", u.Password).
			Set("reset_password_token", nullString(u.ResetPasswordToken)).
			Set("reset_password_expire", nullTime(u.ResetPasswordExpire)).
			Where(sq.Eq{"id": u.ID.String()}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return userDomain.ErrUserNotFound
		}
		return sqldb.InsertOutboxTx(ctx, tx, r.sb, evt)
	})
	if sqldb.IsUniqueViolation(err) {
		return userDomain.ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepoSQL) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	return sqldb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args, err := r.sb.Delete(usersTable).Where(sq.Eq{"id": id.String()}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return userDomain.ErrUserNotFound
		}
		return sqldb.InsertOutboxTx(ctx, tx, r.sb, evt)
	})
}

// ------------------ Lectura ------------------

func (r *UserRepoSQL) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id.String()})
}

func (r *UserRepoSQL) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *UserRepoSQL) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*userDomain.User, error) {
	return r.getOne(ctx, sq.And{
		sq.Eq{"reset_password_token": hashedToken},
		sq.Gt{"reset_password_expire": now.UTC()},
	})
}

func (r *UserRepoSQL) getOne(ctx context.Context, where sq.Sqlizer) (*userDomain.User, error) {
	query, args, err := r.sb.Select(userColumns...).From(usersTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	var (
		u      userDomain.User
		idStr  string
		token  sql.NullString
		expire sql.NullTime
	)
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&idStr, &u.Name, &u.Email, &u.Role, &u.Password, &token, &expire, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userDomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if u.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", idStr, err)
	}
	u.ResetPasswordToken = token.String
	if expire.Valid {
		t := expire.Time
		u.ResetPasswordExpire = &t
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
