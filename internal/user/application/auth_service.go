package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedCache "github.com/davicafu/devcamper/shared/platform/cache"
)

// AuthService cubre registro, login, perfil propio y reseteo de contraseña.
// También implementa middleware.Authenticator.
type AuthService struct {
	repo     userDomain.UserRepository
	tokens   userDomain.TokenIssuer
	mailer   userDomain.Mailer
	cache    sharedCache.Cache
	resetURL string // con un %s para el token en claro
	now      func() time.Time
	log      *zap.Logger
}

func NewAuthService(repo userDomain.UserRepository, tokens userDomain.TokenIssuer, mailer userDomain.Mailer, cache sharedCache.Cache, resetURL string, log *zap.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		mailer:   mailer,
		cache:    cache,
		resetURL: resetURL,
		now:      time.Now,
		log:      log,
	}
}

// Register da de alta al usuario y devuelve ya su token de sesión.
func (s *AuthService) Register(ctx context.Context, in userDomain.RegisterInput) (*userDomain.User, string, error) {
	if in.Role == sharedDomain.RoleAdmin {
		return nil, "", userDomain.ErrAdminSelfAssigned
	}
	user, err := userDomain.NewUser(in)
	if err != nil {
		return nil, "", err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, user.ID.String(), userDomain.UserCreated, user.ToEvent())
	if err := s.repo.Create(ctx, user, evt); err != nil {
		return nil, "", err
	}
	s.log.Info("User registered", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*userDomain.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", userDomain.ErrMissingCredentials
	}
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, "", userDomain.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.MatchPassword(password) {
		return nil, "", userDomain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate valida el token y comprueba que el usuario sigue existiendo.
func (s *AuthService) Authenticate(ctx context.Context, token string) (sharedDomain.Principal, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return sharedDomain.Principal{}, sharedDomain.ErrUnauthenticated
	}
	user, err := cachedUser(ctx, s.repo, s.cache, id, s.log)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return sharedDomain.Principal{}, sharedDomain.ErrUnauthenticated
		}
		return sharedDomain.Principal{}, err
	}
	return user.Principal(), nil
}

func (s *AuthService) Me(ctx context.Context, p sharedDomain.Principal) (*userDomain.User, error) {
	user, err := cachedUser(ctx, s.repo, s.cache, p.ID, s.log)
	if errors.Is(err, userDomain.ErrUserNotFound) {
		return nil, notFound(p.ID)
	}
	return user, err
}

// UpdateDetails cambia nombre y email del propio usuario; el rol no se toca.
func (s *AuthService) UpdateDetails(ctx context.Context, p sharedDomain.Principal, patch userDomain.UserPatch) (*userDomain.User, error) {
	user, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, notFound(p.ID)
		}
		return nil, err
	}
	if err := user.Apply(patch, false); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword exige la contraseña actual y devuelve un token nuevo.
func (s *AuthService) UpdatePassword(ctx context.Context, p sharedDomain.Principal, current, next string) (string, error) {
	user, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return "", notFound(p.ID)
		}
		return "", err
	}
	if !user.MatchPassword(current) {
		return "", userDomain.ErrPasswordIncorrect
	}
	if err := user.SetPassword(next); err != nil {
		return "", err
	}
	if err := s.save(ctx, user); err != nil {
		return "", err
	}
	return s.tokens.Issue(user)
}

// ForgotPassword guarda el hash de un token nuevo y envía el enlace por correo.
// Si el correo falla el token se descarta.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return sharedDomain.NewError(sharedDomain.ErrNotFound, "There is no user with that email")
		}
		return err
	}

	raw, err := user.IssueResetToken(s.now())
	if err != nil {
		return err
	}
	if err := s.save(ctx, user); err != nil {
		return err
	}

	msg := userDomain.Message{
		To:      user.Email,
		Subject: "Password reset token",
		Body: fmt.Sprintf("You are receiving this email because you (or someone else) has requested the reset of a password. "+
			"Please make a PUT request to: \n\n %s", fmt.Sprintf(s.resetURL, raw)),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("Reset email failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		user.ClearResetToken()
		if errSave := s.save(ctx, user); errSave != nil {
			s.log.Error("Failed to clear reset token", zap.Error(errSave))
		}
		return userDomain.ErrEmailNotSent
	}
	return nil
}

// ResetPassword fija la contraseña nueva si el token existe y no ha caducado.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password string) (*userDomain.User, string, error) {
	user, err := s.repo.GetByResetToken(ctx, userDomain.HashResetToken(rawToken), s.now())
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, "", userDomain.ErrInvalidResetToken
		}
		return nil, "", err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, "", err
	}
	user.ClearResetToken()
	if err := s.save(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) save(ctx context.Context, user *userDomain.User) error {
	evt := sharedDomain.NewOutboxEvent(aggregateType, user.ID.String(), userDomain.UserUpdated, user.ToEvent())
	if err := s.repo.Update(ctx, user, evt); err != nil {
		return err
	}
	sharedCache.InvalidateNow(ctx, s.cache, cacheKey(user.ID), s.log)
	return nil
}
