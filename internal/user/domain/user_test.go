package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name    string
		in      RegisterInput
		wantErr error
	}{
		{"rol por defecto", RegisterInput{Name: "John", Email: "John@Gmail.com ", Password: "123456"}, nil},
		{"publisher", RegisterInput{Name: "Kevin", Email: "kevin@gmail.com", Password: "123456", Role: "publisher"}, nil},
		{"email inválido", RegisterInput{Name: "John", Email: "john", Password: "123456"}, sharedDomain.ErrInvalid},
		{"contraseña corta", RegisterInput{Name: "John", Email: "john@gmail.com", Password: "123"}, ErrPasswordTooShort},
		{"rol desconocido", RegisterInput{Name: "John", Email: "john@gmail.com", Password: "123456", Role: "root"}, sharedDomain.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.in.Password, u.Password)
			assert.True(t, u.MatchPassword(tt.in.Password))
			assert.False(t, u.MatchPassword("wrong-password"))
		})
	}
}

func TestNewUser_NormalizesEmailAndRole(t *testing.T) {
	u, err := NewUser(RegisterInput{Name: " John ", Email: " John@Gmail.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "john@gmail.com", u.Email)
	assert.Equal(t, "John", u.Name)
	assert.Equal(t, sharedDomain.RoleUser, u.Role)
}

func TestResetToken(t *testing.T) {
	u, err := NewUser(RegisterInput{Name: "John", Email: "john@gmail.com", Password: "123456"})
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	raw, err := u.IssueResetToken(now)
	require.NoError(t, err)

	assert.Len(t, raw, 40)
	assert.Equal(t, HashResetToken(raw), u.ResetPasswordToken)
	assert.NotEqual(t, raw, u.ResetPasswordToken)
	require.NotNil(t, u.ResetPasswordExpire)
	assert.Equal(t, now.Add(10*time.Minute), *u.ResetPasswordExpire)

	u.ClearResetToken()
	assert.Empty(t, u.ResetPasswordToken)
	assert.Nil(t, u.ResetPasswordExpire)
}

func TestApply_RoleOnlyWhenAllowed(t *testing.T) {
	u, err := NewUser(RegisterInput{Name: "John", Email: "john@gmail.com", Password: "123456"})
	require.NoError(t, err)

	admin := sharedDomain.RoleAdmin
	require.NoError(t, u.Apply(UserPatch{Role: &admin}, false))
	assert.Equal(t, sharedDomain.RoleUser, u.Role)

	require.NoError(t, u.Apply(UserPatch{Role: &admin}, true))
	assert.Equal(t, sharedDomain.RoleAdmin, u.Role)

	bad := "not-an-email"
	assert.ErrorIs(t, u.Apply(UserPatch{Email: &bad}, false), sharedDomain.ErrInvalid)
}
