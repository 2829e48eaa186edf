package http

import (
	"github.com/gin-gonic/gin"

	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// RegisterReviewRoutes registra /reviews y las rutas anidadas bajo /bootcamps/:id.
// Las reseñas las escriben usuarios normales; los publishers no.
func RegisterReviewRoutes(api *gin.RouterGroup, handler *ReviewHandler, protect gin.HandlerFunc) {
	reviewers := middleware.Authorize(sharedDomain.RoleUser, sharedDomain.RoleAdmin)

	reviews := api.Group("/reviews")
	{
		reviews.GET("", handler.ListReviews)
		reviews.GET("/:id", handler.GetReview)
		reviews.PUT("/:id", protect, reviewers, handler.UpdateReview)
		reviews.DELETE("/:id", protect, reviewers, handler.DeleteReview)
	}

	api.GET("/bootcamps/:id/reviews", handler.ListBootcampReviews)
	api.POST("/bootcamps/:id/reviews", protect, reviewers, handler.CreateReview)
}
