package http

import (
	"github.com/gin-gonic/gin"

	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// RegisterAuthRoutes registra /auth: alta, sesión y perfil propio.
func RegisterAuthRoutes(api *gin.RouterGroup, handler *AuthHandler, protect gin.HandlerFunc) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.GET("/logout", handler.Logout)
		auth.GET("/me", protect, handler.Me)
		auth.PUT("/updatedetails", protect, handler.UpdateDetails)
		auth.PUT("/updatepassword", protect, handler.UpdatePassword)
		auth.POST("/forgotpassword", handler.ForgotPassword)
		auth.PUT("/resetpassword/:resettoken", handler.ResetPassword)
	}
}

// RegisterUserRoutes registra el CRUD de /users, solo para admin.
func RegisterUserRoutes(api *gin.RouterGroup, handler *UserHandler, protect gin.HandlerFunc) {
	users := api.Group("/users", protect, middleware.Authorize(sharedDomain.RoleAdmin))
	{
		users.GET("", handler.ListUsers)
		users.GET("/:id", handler.GetUser)
		users.POST("", handler.CreateUser)
		users.PUT("/:id", handler.UpdateUser)
		users.DELETE("/:id", handler.DeleteUser)
	}
}
