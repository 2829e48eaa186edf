package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	sharedCache "github.com/davicafu/devcamper/shared/platform/cache"
	sharedUtils "github.com/davicafu/devcamper/shared/utils"
)

const (
	aggregateType = "user"
	cacheTTL      = 60
)

func cacheKey(id uuid.UUID) string {
	return sharedCache.KeyByID(aggregateType, id.String())
}

func notFound(id uuid.UUID) error {
	return fmt.Errorf("%w with the id of %s", userDomain.ErrUserNotFound, id)
}

// cachedUser obtiene un usuario con cache-aside. La copia cacheada no lleva contraseña
// (json:"-"), así que solo sirve para lecturas.
func cachedUser(ctx context.Context, repo userDomain.UserRepository, cache sharedCache.Cache, id uuid.UUID, log *zap.Logger) (*userDomain.User, error) {
	if cache != nil {
		var u userDomain.User
		if hit, _ := cache.Get(ctx, cacheKey(id), &u); hit {
			return &u, nil
		}
	}

	var user *userDomain.User
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		user, errRetry = repo.GetByID(ctx, id)
		if errors.Is(errRetry, userDomain.ErrUserNotFound) {
			return sharedUtils.Permanent(errRetry)
		}
		return errRetry
	})
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(cache, cacheKey(id), user, cacheTTL, log)
	return user, nil
}
