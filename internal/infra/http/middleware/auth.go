package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	"github.com/davicafu/devcamper/pkg/utils"
)

const (
	principalKey = "principal"
	TokenCookie  = "token"
)

// Authenticator resuelve un token en el usuario que lo porta.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (sharedDomain.Principal, error)
}

// Protect exige un token válido en "Authorization: Bearer" o en la cookie "token".
func Protect(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			utils.SendDomainError(c, sharedDomain.ErrUnauthenticated)
			return
		}
		principal, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.SendDomainError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// Authorize limita la ruta a los roles indicados; debe ir detrás de Protect.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			utils.SendDomainError(c, sharedDomain.ErrUnauthenticated)
			return
		}
		for _, r := range roles {
			if principal.Role == r {
				c.Next()
				return
			}
		}
		utils.SendDomainError(c, sharedDomain.NewError(sharedDomain.ErrForbidden,
			"User role "+principal.Role+" is not authorized to access this route"))
	}
}

// CurrentPrincipal devuelve el usuario que dejó Protect en el contexto.
func CurrentPrincipal(c *gin.Context) (sharedDomain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return sharedDomain.Principal{}, false
	}
	p, ok := v.(sharedDomain.Principal)
	return p, ok
}

func ExtractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}
