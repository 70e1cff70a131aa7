package handlers

import (
	"net/http"

	"salonbook/internal/middleware"

	"github.com/gin-gonic/gin"
)

// DailyReport - GET /api/admin/reports/daily?date=YYYY-MM-DD
func (h *Handlers) DailyReport(c *gin.Context) {
	report, err := h.services.Reports.Daily(c.Request.Context(), middleware.Capability(c), c.Query("date"))
	if err != nil {
		respondError(c, "build daily report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}
