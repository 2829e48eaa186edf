package http

import (
	"github.com/gin-gonic/gin"

	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// RegisterBootcampRoutes registra las rutas HTTP para el dominio de Bootcamps.
// protect es el middleware de autenticación; las rutas públicas no lo usan.
func RegisterBootcampRoutes(api *gin.RouterGroup, handler *BootcampHandler, protect gin.HandlerFunc) {
	publishers := middleware.Authorize(sharedDomain.RolePublisher, sharedDomain.RoleAdmin)

	bootcamps := api.Group("/bootcamps")
	{
		bootcamps.GET("", handler.ListBootcamps)                                  // Listado con filtros, orden y paginación
		bootcamps.GET("/export", handler.ExportBootcamps)                         // Mismo listado en .xlsx
		bootcamps.GET("/radius/:zipcode/:distance", handler.GetBootcampsInRadius) // Búsqueda por distancia
		bootcamps.GET("/:id", handler.GetBootcamp)                                // Obtener un bootcamp
		bootcamps.POST("", protect, publishers, handler.CreateBootcamp)           // Crear
		bootcamps.PUT("/:id", protect, publishers, handler.UpdateBootcamp)        // Actualizar
		bootcamps.DELETE("/:id", protect, publishers, handler.DeleteBootcamp)     // Eliminar en cascada
		bootcamps.PUT("/:id/photo", protect, publishers, handler.UploadPhoto)     // Subir foto
	}
}
