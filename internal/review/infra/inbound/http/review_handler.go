package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	"github.com/davicafu/devcamper/internal/review/application"
	reviewDomain "github.com/davicafu/devcamper/internal/review/domain"
	"github.com/davicafu/devcamper/pkg/utils"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

type ReviewHandler struct {
	service *application.ReviewService
}

func NewReviewHandler(service *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func parseID(c *gin.Context, kind string) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.SendNotFound(c, fmt.Sprintf("No %s with the id of %s", kind, raw))
		return uuid.Nil, false
	}
	return id, true
}

func principal(c *gin.Context) (sharedDomain.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		utils.SendDomainError(c, sharedDomain.ErrUnauthenticated)
	}
	return p, ok
}

// ListReviews endpoint GET /api/v1/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	res, err := h.service.ListReviews(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListBootcampReviews endpoint GET /api/v1/bootcamps/:id/reviews
func (h *ReviewHandler) ListBootcampReviews(c *gin.Context) {
	id, ok := parseID(c, "bootcamp")
	if !ok {
		return
	}
	docs, err := h.service.ListBootcampReviews(c.Request.Context(), id)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendList(c, docs)
}

// GetReview endpoint GET /api/v1/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := parseID(c, "review")
	if !ok {
		return
	}
	doc, err := h.service.GetReview(c.Request.Context(), id)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, doc)
}

// CreateReview endpoint POST /api/v1/bootcamps/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	bootcampID, ok := parseID(c, "bootcamp")
	if !ok {
		return
	}
	var req reviewDomain.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), p, bootcampID, req)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, review)
}

// UpdateReview endpoint PUT /api/v1/reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "review")
	if !ok {
		return
	}
	var req reviewDomain.ReviewPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	review, err := h.service.UpdateReview(c.Request.Context(), p, id, req)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, review)
}

// DeleteReview endpoint DELETE /api/v1/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "review")
	if !ok {
		return
	}
	if err := h.service.DeleteReview(c.Request.Context(), p, id); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{})
}
