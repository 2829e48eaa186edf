package http

import (
	"github.com/gin-gonic/gin"

	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// RegisterCourseRoutes registra /courses y las rutas anidadas bajo /bootcamps/:id.
func RegisterCourseRoutes(api *gin.RouterGroup, handler *CourseHandler, protect gin.HandlerFunc) {
	publishers := middleware.Authorize(sharedDomain.RolePublisher, sharedDomain.RoleAdmin)

	courses := api.Group("/courses")
	{
		courses.GET("", handler.ListCourses)
		courses.GET("/:id", handler.GetCourse)
		courses.PUT("/:id", protect, publishers, handler.UpdateCourse)
		courses.DELETE("/:id", protect, publishers, handler.DeleteCourse)
	}

	api.GET("/bootcamps/:id/courses", handler.ListBootcampCourses)
	api.POST("/bootcamps/:id/courses", protect, publishers, handler.CreateCourse)
}
