package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	"github.com/davicafu/devcamper/internal/user/application"
	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	"github.com/davicafu/devcamper/pkg/utils"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// CookieConfig controla la cookie de sesión.
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

// AuthHandler encapsula los endpoints de /auth.
type AuthHandler struct {
	service *application.AuthService
	cookie  CookieConfig
}

func NewAuthHandler(service *application.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie}
}

// sendToken responde {success, token} y deja el token en una cookie http-only.
func (h *AuthHandler) sendToken(c *gin.Context, status int, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
	c.JSON(status, gin.H{"success": true, "token": token})
}

func principal(c *gin.Context) (sharedDomain.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		utils.SendDomainError(c, sharedDomain.ErrUnauthenticated)
	}
	return p, ok
}

// Register endpoint POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req userDomain.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	_, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// Login endpoint POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	_, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// Logout endpoint GET /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "none", 10, "/", "", h.cookie.Secure, true)
	utils.SendSuccess(c, http.StatusOK, gin.H{})
}

// Me endpoint GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	user, err := h.service.Me(c.Request.Context(), p)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}

// UpdateDetails endpoint PUT /api/v1/auth/updatedetails
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	user, err := h.service.UpdateDetails(c.Request.Context(), p, userDomain.UserPatch{Name: req.Name, Email: req.Email})
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}

// UpdatePassword endpoint PUT /api/v1/auth/updatepassword
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	token, err := h.service.UpdatePassword(c.Request.Context(), p, req.CurrentPassword, req.NewPassword)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// ForgotPassword endpoint POST /api/v1/auth/forgotpassword
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Email sent")
}

// ResetPassword endpoint PUT /api/v1/auth/resetpassword/:resettoken
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	_, token, err := h.service.ResetPassword(c.Request.Context(), c.Param("resettoken"), req.Password)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}
