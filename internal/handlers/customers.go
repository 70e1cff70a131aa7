package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LatestCustomer - GET /api/customers/:lineUserId/latest
// Последние контактные данные клиента для предзаполнения формы
func (h *Handlers) LatestCustomer(c *gin.Context) {
	response, err := h.services.Customers.Latest(c.Request.Context(), c.Param("lineUserId"))
	if err != nil {
		respondError(c, "get customer", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CustomerBookings - GET /api/customers/:lineUserId/bookings
func (h *Handlers) CustomerBookings(c *gin.Context) {
	list, err := h.services.Customers.Bookings(c.Request.Context(), c.Param("lineUserId"))
	if err != nil {
		respondError(c, "get customer bookings", err)
		return
	}

	c.JSON(http.StatusOK, list)
}
