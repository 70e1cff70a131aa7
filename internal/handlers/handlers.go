package handlers

import (
	"errors"
	"net/http"

	apperrors "salonbook/internal/errors"
	"salonbook/internal/logger"
	"salonbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SignatureVerifier checks that a webhook body was signed by the messaging platform
type SignatureVerifier interface {
	VerifySignature(body []byte, signature string) bool
}

type Handlers struct {
	services *service.Services
	verifier SignatureVerifier
}

// NewHandlers creates handlers; a nil verifier disables the LINE webhook
func NewHandlers(services *service.Services, verifier SignatureVerifier) *Handlers {
	return &Handlers{
		services: services,
		verifier: verifier,
	}
}

// respondError переводит доменные ошибки в HTTP статусы
func respondError(c *gin.Context, action string, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, apperrors.ErrSlotTaken):
		c.JSON(http.StatusConflict, gin.H{"error": service.MsgSlotTaken})
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidService),
		errors.Is(err, apperrors.ErrSettingsMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.WithContext(c.Request.Context()).Error("Failed to "+action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// pathID parses a uuid path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
