package handlers

import (
	"net/http"

	"salonbook/internal/middleware"
	"salonbook/internal/models"

	"github.com/gin-gonic/gin"
)

// ListServices - GET /api/services
// Список активных услуг
func (h *Handlers) ListServices(c *gin.Context) {
	services, err := h.services.Catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, "list services", err)
		return
	}

	c.JSON(http.StatusOK, services)
}

// SearchServices - GET /api/services/search?q=
func (h *Handlers) SearchServices(c *gin.Context) {
	services, err := h.services.Catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, "search services", err)
		return
	}

	c.JSON(http.StatusOK, services)
}

// CreateService - POST /api/admin/services
func (h *Handlers) CreateService(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service, err := h.services.Catalog.Create(c.Request.Context(), middleware.Capability(c), &req)
	if err != nil {
		respondError(c, "create service", err)
		return
	}

	c.JSON(http.StatusCreated, service)
}

// UpdateService - PUT /api/admin/services/:id
func (h *Handlers) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service, err := h.services.Catalog.Update(c.Request.Context(), middleware.Capability(c), id, &req)
	if err != nil {
		respondError(c, "update service", err)
		return
	}

	c.JSON(http.StatusOK, service)
}

// UpdateDeposits - PUT /api/admin/deposits
// Массовое изменение депозитов
func (h *Handlers) UpdateDeposits(c *gin.Context) {
	var req models.UpdateDepositsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Catalog.UpdateDeposits(c.Request.Context(), middleware.Capability(c), &req); err != nil {
		respondError(c, "update deposits", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": len(req.Services)})
}

// DeleteService - DELETE /api/admin/services/:id
// Услуга только деактивируется
func (h *Handlers) DeleteService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Catalog.Deactivate(c.Request.Context(), middleware.Capability(c), id); err != nil {
		respondError(c, "delete service", err)
		return
	}

	c.Status(http.StatusOK)
}

// ReindexServices - POST /api/admin/services/reindex
func (h *Handlers) ReindexServices(c *gin.Context) {
	n, err := h.services.Catalog.Reindex(c.Request.Context(), middleware.Capability(c))
	if err != nil {
		respondError(c, "reindex services", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"indexed": n})
}
