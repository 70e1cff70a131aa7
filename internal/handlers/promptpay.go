package handlers

import (
	"net/http"
	"strconv"

	"salonbook/internal/middleware"
	"salonbook/internal/models"
	"salonbook/internal/promptpay"

	"github.com/gin-gonic/gin"
)

const maxQRImageSize = 1024

// GetPromptPaySettings - GET /api/admin/promptpay/settings
func (h *Handlers) GetPromptPaySettings(c *gin.Context) {
	settings, err := h.services.PromptPay.GetSettings(c.Request.Context(), middleware.Capability(c))
	if err != nil {
		respondError(c, "get promptpay settings", err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// SavePromptPaySettings - POST /api/admin/promptpay/settings
func (h *Handlers) SavePromptPaySettings(c *gin.Context) {
	var req models.SavePromptPaySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.services.PromptPay.SaveSettings(c.Request.Context(), middleware.Capability(c), &req)
	if err != nil {
		respondError(c, "save promptpay settings", err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// AdminGenerateQR - POST /api/admin/promptpay/generate
// QR по бронированию или по услуге
func (h *Handlers) AdminGenerateQR(c *gin.Context) {
	var req models.AdminQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.PromptPay.AdminGenerate(c.Request.Context(), middleware.Capability(c), &req)
	if err != nil {
		respondError(c, "generate qr", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CustomerGenerateQR - POST /api/promptpay/generate
func (h *Handlers) CustomerGenerateQR(c *gin.Context) {
	var req models.CustomerQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.PromptPay.CustomerGenerate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "generate qr", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// QRImage - GET /api/promptpay/qr.png?data=&size=
// Рендер payload в PNG
func (h *Handlers) QRImage(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data is required"})
		return
	}

	size := promptpay.DefaultImageSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > maxQRImageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be between 64 and 1024"})
			return
		}
		size = n
	}

	png, err := promptpay.PNG(data, size)
	if err != nil {
		respondError(c, "render qr", err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
