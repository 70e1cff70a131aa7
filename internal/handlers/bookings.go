package handlers

import (
	"errors"
	"io"
	"net/http"

	"salonbook/internal/middleware"
	"salonbook/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateBooking - POST /api/bookings
// Создать бронирование
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Bookings.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "create booking", err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.services.Bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get booking", err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateBookingCustomer - PUT /api/bookings/:id/customer
// Изменить контактные данные клиента в бронировании
func (h *Handlers) UpdateBookingCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookingCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.services.Customers.UpdateBookingCustomer(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, "update booking customer", err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// ListAdminBookings - GET /api/admin/bookings?status=
// Очередь бронирований для администратора
func (h *Handlers) ListAdminBookings(c *gin.Context) {
	status := models.BookingStatus(c.Query("status"))

	list, err := h.services.Bookings.ListByStatus(c.Request.Context(), middleware.Capability(c), status)
	if err != nil {
		respondError(c, "list bookings", err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ApproveBooking - POST /api/admin/bookings/:id/approve
// Подтвердить депозит
func (h *Handlers) ApproveBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.services.Payments.Approve(c.Request.Context(), middleware.Capability(c), id)
	if err != nil {
		respondError(c, "approve booking", err)
		return
	}

	c.JSON(http.StatusOK, transitionResponse(booking))
}

// RejectBooking - POST /api/admin/bookings/:id/reject
// Отклонить депозит; тело с причиной необязательно
func (h *Handlers) RejectBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Payments.Reject(c.Request.Context(), middleware.Capability(c), id, req.Reason)
	if err != nil {
		respondError(c, "reject booking", err)
		return
	}

	c.JSON(http.StatusOK, transitionResponse(booking))
}

// ConfirmQRPayment - POST /api/admin/bookings/:id/confirm-qr
func (h *Handlers) ConfirmQRPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.services.Payments.ConfirmQRPayment(c.Request.Context(), middleware.Capability(c), id)
	if err != nil {
		respondError(c, "confirm qr payment", err)
		return
	}

	c.JSON(http.StatusOK, transitionResponse(booking))
}

func transitionResponse(b *models.Booking) models.TransitionResponse {
	return models.TransitionResponse{
		ID:            b.ID.String(),
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
	}
}
