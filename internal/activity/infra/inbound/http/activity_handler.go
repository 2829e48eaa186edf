package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/devcamper/internal/activity/application"
	activityDomain "github.com/davicafu/devcamper/internal/activity/domain"
	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	"github.com/davicafu/devcamper/pkg/utils"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

type ActivityHandler struct {
	service *application.ActivityService
}

func NewActivityHandler(service *application.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// RegisterActivityRoutes expone la analítica solo a administradores.
func RegisterActivityRoutes(api *gin.RouterGroup, handler *ActivityHandler, protect gin.HandlerFunc) {
	analytics := api.Group("/analytics", protect, middleware.Authorize(sharedDomain.RoleAdmin))
	analytics.GET("/activity", handler.DailyTrend)
}

// DailyTrend endpoint GET /api/v1/analytics/activity?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ActivityHandler) DailyTrend(c *gin.Context) {
	from, ok := parseDay(c, "from")
	if !ok {
		return
	}
	to, ok := parseDay(c, "to")
	if !ok {
		return
	}

	trend, err := h.service.DailyTrend(c.Request.Context(), from, to)
	if errors.Is(err, activityDomain.ErrAnalyticsDisabled) {
		utils.SendError(c, http.StatusServiceUnavailable, "Analytics are not enabled")
		return
	}
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendList(c, trend)
}

func parseDay(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		utils.SendBadRequest(c, "Invalid '"+key+"' date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
