package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/devcamper/internal/course/application"
	courseDomain "github.com/davicafu/devcamper/internal/course/domain"
	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	"github.com/davicafu/devcamper/pkg/utils"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// CourseHandler encapsula los endpoints HTTP relacionados con Course.
type CourseHandler struct {
	service *application.CourseService
}

func NewCourseHandler(service *application.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// parseID lee :id; kind solo cambia el mensaje de 404.
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

// ListCourses endpoint GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	res, err := h.service.ListCourses(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListBootcampCourses endpoint GET /api/v1/bootcamps/:id/courses
func (h *CourseHandler) ListBootcampCourses(c *gin.Context) {
	id, ok := parseID(c, "bootcamp")
	if !ok {
		return
	}
	docs, err := h.service.ListBootcampCourses(c.Request.Context(), id)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendList(c, docs)
}

// GetCourse endpoint GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := parseID(c, "course")
	if !ok {
		return
	}
	doc, err := h.service.GetCourse(c.Request.Context(), id)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, doc)
}

// CreateCourse endpoint POST /api/v1/bootcamps/:id/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	bootcampID, ok := parseID(c, "bootcamp")
	if !ok {
		return
	}
	var req courseDomain.CourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), p, bootcampID, req)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, course)
}

// UpdateCourse endpoint PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "course")
	if !ok {
		return
	}
	var req courseDomain.CoursePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), p, id, req)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, course)
}

// DeleteCourse endpoint DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "course")
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), p, id); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{})
}
