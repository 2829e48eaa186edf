package domain

import "github.com/google/uuid"

const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// Principal es el usuario autenticado que origina una operación.
type Principal struct {
	ID   uuid.UUID
	Role string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanModify aplica la regla "propietario o admin".
func (p Principal) CanModify(owner uuid.UUID) bool {
	return p.IsAdmin() || p.ID == owner
}
