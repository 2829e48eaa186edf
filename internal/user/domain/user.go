package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedEvents "github.com/davicafu/devcamper/shared/events"
	sharedValidation "github.com/davicafu/devcamper/shared/platform/validation"
)

const (
	MinPasswordLength = 6
	ResetTokenTTL     = 10 * time.Minute
)

// User representa una cuenta. La contraseña y el token de reseteo nunca se serializan.
type User struct {
	ID                  uuid.UUID  `json:"_id"`
	Name                string     `json:"name" validate:"required"`
	Email               string     `json:"email" validate:"required,email"`
	Role                string     `json:"role" validate:"required,oneof=user publisher admin"`
	Password            string     `json:"-"`
	ResetPasswordToken  string     `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}

func (u *User) PartitionKey() string {
	return u.ID.String()
}

// RegisterInput es el alta pública: el rol admin no se puede pedir.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserInput es el alta hecha por un admin, que sí puede asignar cualquier rol.
type UserInput = RegisterInput

type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// NewUser crea el usuario con la contraseña ya cifrada. Sin rol queda como "user".
func NewUser(in RegisterInput) (*User, error) {
	u := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Role:      in.Role,
		CreatedAt: time.Now().UTC(),
	}
	if u.Role == "" {
		u.Role = sharedDomain.RoleUser
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) Validate() error {
	return sharedValidation.Struct(u)
}

// Apply aplica el patch. allowRole es false para el propio usuario (updatedetails).
func (u *User) Apply(p UserPatch, allowRole bool) error {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if allowRole && p.Role != nil {
		u.Role = *p.Role
	}
	return u.Validate()
}

// SetPassword valida la longitud mínima y guarda el hash bcrypt.
func (u *User) SetPassword(raw string) error {
	if len(raw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) MatchPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}

// IssueResetToken genera un token aleatorio, guarda su sha256 y la caducidad.
// Devuelve el token en claro, que solo viaja por el correo.
func (u *User) IssueResetToken(now time.Time) (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	raw := hex.EncodeToString(buf)
	expire := now.Add(ResetTokenTTL)
	u.ResetPasswordToken = HashResetToken(raw)
	u.ResetPasswordExpire = &expire
	return raw, nil
}

func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
}

// HashResetToken es la forma en que el token queda guardado y se busca.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (u *User) Principal() sharedDomain.Principal {
	return sharedDomain.Principal{ID: u.ID, Role: u.Role}
}

func (u *User) ToEvent() sharedEvents.UserChanged {
	return sharedEvents.UserChanged{ID: u.ID.String(), Email: u.Email, Role: u.Role}
}
