package application

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedCache "github.com/davicafu/devcamper/shared/platform/cache"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
)

// UserService es la administración de usuarios (solo admin).
type UserService struct {
	repo    userDomain.UserRepository
	listing sharedQuery.Collection
	cache   sharedCache.Cache
	log     *zap.Logger
}

func NewUserService(repo userDomain.UserRepository, listing sharedQuery.Collection, cache sharedCache.Cache, log *zap.Logger) *UserService {
	return &UserService{repo: repo, listing: listing, cache: cache, log: log}
}

func (s *UserService) ListUsers(ctx context.Context, values url.Values) (*sharedQuery.Result, error) {
	res, err := sharedQuery.Run(ctx, s.listing, values)
	if err != nil {
		s.log.Warn("User listing failed", zap.String("query", values.Encode()), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	user, err := cachedUser(ctx, s.repo, s.cache, id, s.log)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, notFound(id)
		}
		s.log.Error("Failed to fetch user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// CreateUser permite cualquier rol, incluido admin.
func (s *UserService) CreateUser(ctx context.Context, in userDomain.UserInput) (*userDomain.User, error) {
	user, err := userDomain.NewUser(in)
	if err != nil {
		return nil, err
	}
	evt := sharedDomain.NewOutboxEvent(aggregateType, user.ID.String(), userDomain.UserCreated, user.ToEvent())
	if err := s.repo.Create(ctx, user, evt); err != nil {
		return nil, err
	}
	sharedCache.AsyncCacheSet(s.cache, cacheKey(user.ID), user, cacheTTL, s.log)
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, patch userDomain.UserPatch) (*userDomain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	if err := user.Apply(patch, true); err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, id.String(), userDomain.UserUpdated, user.ToEvent())
	if err := s.repo.Update(ctx, user, evt); err != nil {
		return nil, err
	}
	sharedCache.InvalidateNow(ctx, s.cache, cacheKey(id), s.log)
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return notFound(id)
		}
		return err
	}

	evt := sharedDomain.NewOutboxEvent(aggregateType, id.String(), userDomain.UserDeleted, user.ToEvent())
	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return notFound(id)
		}
		return err
	}
	sharedCache.InvalidateNow(ctx, s.cache, cacheKey(id), s.log)
	return nil
}
