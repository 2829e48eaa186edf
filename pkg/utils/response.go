package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
	sharedQuery "github.com/davicafu/devcamper/shared/platform/query"
)

// SendSuccess envía {success:true, data}.
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// SendList envía {success:true, count, data} para listados sin paginar.
func SendList[T any](c *gin.Context, data []T) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(data),
		"data":    data,
	})
}

// SendError envía una respuesta de error con el formato estándar {success:false, error}.
func SendError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// StatusFor traduce un error de dominio a código HTTP.
func StatusFor(err error) int {
	switch {
	// Un fallo del almacén en un listado es siempre 500, aunque envuelva un error de dominio.
	case errors.Is(err, sharedQuery.ErrQueryExecution):
		return http.StatusInternalServerError
	case errors.Is(err, sharedDomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharedDomain.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, sharedDomain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, sharedDomain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, sharedDomain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SendDomainError elige el código con StatusFor. Los 500 no exponen el detalle interno.
func SendDomainError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		SendError(c, status, "Server Error")
		return
	}
	SendError(c, status, err.Error())
}

// --- Helpers específicos para errores comunes ---

func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

func SendInternalServerError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}
