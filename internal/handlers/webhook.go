package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"salonbook/internal/external"
	"salonbook/internal/logger"

	"github.com/gin-gonic/gin"
)

// LineWebhook - POST /api/line/webhook
// Принимает события LINE: ключевое слово бронирования и фото чеков
func (h *Handlers) LineWebhook(c *gin.Context) {
	if h.verifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "LINE webhook is not configured"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if !h.verifier.VerifySignature(body, c.GetHeader(external.HeaderLineSignature)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var payload external.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	logger.WithContext(c.Request.Context()).Debug("LINE webhook received", "events", len(payload.Events))

	// Events are processed even if LINE closes the connection early
	h.services.Chat.HandleEvents(context.WithoutCancel(c.Request.Context()), payload.Events)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
