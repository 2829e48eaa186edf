package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// InMemoryUserRepo simula UserRepository con email único y outbox.
type InMemoryUserRepo struct {
	Users    map[uuid.UUID]*userDomain.User
	Outbox   []sharedDomain.OutboxEvent
	GetCalls int
	mu       sync.Mutex
}

var _ userDomain.UserRepository = (*InMemoryUserRepo)(nil)

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{Users: make(map[uuid.UUID]*userDomain.User)}
}

func copyUser(u *userDomain.User) *userDomain.User {
	c := *u
	if u.ResetPasswordExpire != nil {
		t := *u.ResetPasswordExpire
		c.ResetPasswordExpire = &t
	}
	return &c
}

func (r *InMemoryUserRepo) Create(ctx context.Context, u *userDomain.User, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.ID == u.ID || existing.Email == u.Email {
			return userDomain.ErrUserAlreadyExists
		}
	}
	r.Users[u.ID] = copyUser(u)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetCalls++
	u, ok := r.Users[id]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *InMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, userDomain.ErrUserNotFound
}

func (r *InMemoryUserRepo) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.ResetPasswordToken == hashedToken && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now) {
			return copyUser(u), nil
		}
	}
	return nil, userDomain.ErrUserNotFound
}

func (r *InMemoryUserRepo) Update(ctx context.Context, u *userDomain.User, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Users[u.ID]; !ok {
		return userDomain.ErrUserNotFound
	}
	for _, existing := range r.Users {
		if existing.ID != u.ID && existing.Email == u.Email {
			return userDomain.ErrUserAlreadyExists
		}
	}
	r.Users[u.ID] = copyUser(u)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryUserRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Users[id]; !ok {
		return userDomain.ErrUserNotFound
	}
	delete(r.Users, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

// FakeTokens emite tokens "tok.<uuid>"; como un JWT, solo usan caracteres válidos en una cookie.
type FakeTokens struct{}

func (FakeTokens) Issue(u *userDomain.User) (string, error) {
	return "tok." + u.ID.String(), nil
}

func (FakeTokens) Verify(token string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimPrefix(token, "tok."))
	if err != nil || !strings.HasPrefix(token, "tok.") {
		return uuid.Nil, sharedDomain.ErrUnauthenticated
	}
	return id, nil
}

// FakeMailer guarda los correos enviados; con Fail devuelve error.
type FakeMailer struct {
	Sent []userDomain.Message
	Fail bool
	mu   sync.Mutex
}

func (m *FakeMailer) Send(ctx context.Context, msg userDomain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("smtp unavailable")
	}
	m.Sent = append(m.Sent, msg)
	return nil
}
