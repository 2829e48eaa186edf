package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/devcamper/internal/bootcamp/application"
	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
	"github.com/davicafu/devcamper/internal/infra/export"
	"github.com/davicafu/devcamper/internal/infra/http/middleware"
	"github.com/davicafu/devcamper/pkg/utils"
	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

// exportColumns son las columnas de GET /bootcamps/export.
var exportColumns = []export.Column{
	{Header: "ID", Path: "_id", Width: 38},
	{Header: "Name", Path: "name", Width: 30},
	{Header: "Slug", Path: "slug", Width: 30},
	{Header: "Careers", Path: "careers", Width: 40},
	{Header: "City", Path: "location.city", Width: 20},
	{Header: "State", Path: "location.state"},
	{Header: "Average Cost", Path: "averageCost"},
	{Header: "Average Rating", Path: "averageRating"},
	{Header: "Housing", Path: "housing"},
	{Header: "Job Guarantee", Path: "jobGuarantee"},
	{Header: "Created At", Path: "createdAt", Width: 25},
}

// BootcampHandler encapsula los endpoints HTTP relacionados con Bootcamp.
type BootcampHandler struct {
	service *application.BootcampService
}

func NewBootcampHandler(service *application.BootcampService) *BootcampHandler {
	return &BootcampHandler{service: service}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.SendNotFound(c, fmt.Sprintf("Bootcamp not found with id of %s", raw))
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

// ListBootcamps endpoint GET /api/v1/bootcamps
func (h *BootcampHandler) ListBootcamps(c *gin.Context) {
	res, err := h.service.ListBootcamps(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportBootcamps endpoint GET /api/v1/bootcamps/export
func (h *BootcampHandler) ExportBootcamps(c *gin.Context) {
	docs, err := h.service.ExportBootcamps(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	records := make([]map[string]interface{}, len(docs))
	for i, d := range docs {
		records[i] = d
	}

	fileName := fmt.Sprintf("bootcamps_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", export.ContentTypeXLSX)
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Status(http.StatusOK)
	if err := export.WriteXLSX(c.Writer, "Bootcamps", exportColumns, records); err != nil {
		_ = c.Error(err)
	}
}

// GetBootcamp endpoint GET /api/v1/bootcamps/:id
func (h *BootcampHandler) GetBootcamp(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	bootcamp, err := h.service.GetBootcamp(c.Request.Context(), id)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, bootcamp)
}

// CreateBootcamp endpoint POST /api/v1/bootcamps
func (h *BootcampHandler) CreateBootcamp(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req bootcampDomain.BootcampInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	bootcamp, err := h.service.CreateBootcamp(c.Request.Context(), p, req)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, bootcamp)
}

// UpdateBootcamp endpoint PUT /api/v1/bootcamps/:id
func (h *BootcampHandler) UpdateBootcamp(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	// Punteros para que los campos sean opcionales en el JSON
	var req bootcampDomain.BootcampPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	bootcamp, err := h.service.UpdateBootcamp(c.Request.Context(), p, id, req)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, bootcamp)
}

// DeleteBootcamp endpoint DELETE /api/v1/bootcamps/:id
func (h *BootcampHandler) DeleteBootcamp(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBootcamp(c.Request.Context(), p, id); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{})
}

// GetBootcampsInRadius endpoint GET /api/v1/bootcamps/radius/:zipcode/:distance
func (h *BootcampHandler) GetBootcampsInRadius(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		utils.SendBadRequest(c, "Distance must be a number")
		return
	}
	bootcamps, err := h.service.BootcampsInRadius(c.Request.Context(), c.Param("zipcode"), distance)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendList(c, bootcamps)
}

// UploadPhoto endpoint PUT /api/v1/bootcamps/:id/photo (multipart, campo "file")
func (h *BootcampHandler) UploadPhoto(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		utils.SendDomainError(c, bootcampDomain.ErrPhotoRequired)
		return
	}
	file, err := fh.Open()
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	defer file.Close()

	name, err := h.service.UploadPhoto(c.Request.Context(), p, id, application.Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     file,
	})
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, name)
}
