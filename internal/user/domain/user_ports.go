package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// ---------- Errores de dominio ----------
var (
	ErrUserNotFound       = sharedDomain.NewError(sharedDomain.ErrNotFound, "No user")
	ErrUserAlreadyExists  = sharedDomain.NewError(sharedDomain.ErrConflict, "Duplicate field value entered")
	ErrInvalidCredentials = sharedDomain.NewError(sharedDomain.ErrUnauthenticated, "Invalid credentials")
	ErrMissingCredentials = sharedDomain.NewError(sharedDomain.ErrInvalid, "Please provide an email and password")
	ErrPasswordTooShort   = sharedDomain.NewError(sharedDomain.ErrInvalid, "password must be at least 6")
	ErrPasswordIncorrect  = sharedDomain.NewError(sharedDomain.ErrUnauthenticated, "Password is incorrect")
	ErrInvalidResetToken  = sharedDomain.NewError(sharedDomain.ErrInvalid, "Invalid token")
	ErrAdminSelfAssigned  = sharedDomain.NewError(sharedDomain.ErrInvalid, "The admin role can not be self-assigned")
	ErrEmailNotSent       = errors.New("email could not be sent")
)

// ---------- Interfaces (Ports) ----------

// UserRepository define las operaciones persistentes para User.
type UserRepository interface {
	// Debe devolver ErrUserAlreadyExists si el email ya está registrado.
	Create(ctx context.Context, u *User, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrUserNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByResetToken busca por el hash del token y exige que no haya caducado en now.
	GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*User, error)

	// Debe devolver ErrUserNotFound si el usuario no existe.
	Update(ctx context.Context, u *User, evt sharedDomain.OutboxEvent) error
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error
}

// TokenIssuer firma y verifica los tokens de sesión.
type TokenIssuer interface {
	Issue(u *User) (string, error)
	// Verify devuelve el id del usuario; cualquier fallo es ErrUnauthenticated.
	Verify(token string) (uuid.UUID, error)
}

// Message es un correo saliente.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
