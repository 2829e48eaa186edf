package domain

import "errors"

// Categorías de error comunes a todos los agregados. Los adaptadores de entrada
// eligen el código de respuesta a partir de ellas con errors.Is.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalid         = errors.New("invalid input")
	ErrUnauthenticated = errors.New("not authorized to access this route")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("duplicate field value entered")
)

type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

// NewError crea un error de dominio con mensaje propio que sigue siendo de la categoría kind.
func NewError(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}
