package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	apperrors "salonbook/internal/errors"
	"salonbook/internal/external"
	"salonbook/internal/logger"
	"salonbook/internal/repository"
)

// ChatService handles events from the LINE webhook
type ChatService struct {
	customerRepo repository.CustomerStore
	payments     *PaymentService
	notifier     *notifySink
	chat         ChatClient
	storage      SlipStorage
	baseURL      string
	liffID       string
	now          func() time.Time
}

func NewChatService(customerRepo repository.CustomerStore, payments *PaymentService, notifier *notifySink, chat ChatClient, storage SlipStorage, opts Options) *ChatService {
	return &ChatService{
		customerRepo: customerRepo,
		payments:     payments,
		notifier:     notifier,
		chat:         chat,
		storage:      storage,
		baseURL:      opts.BaseURL,
		liffID:       opts.LiffID,
		now:          time.Now,
	}
}

// HandleEvents processes every event independently; one failing event does not stop the rest
func (s *ChatService) HandleEvents(ctx context.Context, events []external.WebhookEvent) {
	for _, ev := range events {
		userID := ev.Source.UserID
		if userID == "" || ev.Type != "message" {
			continue
		}

		evCtx := logger.ContextWithLineUserID(ctx, userID)
		var err error
		switch ev.Message.Type {
		case "text":
			err = s.handleText(evCtx, ev)
		case "image":
			err = s.handleSlip(evCtx, ev)
		}
		if err != nil {
			logger.WithContext(evCtx).Error("Failed to handle webhook event",
				"error", err,
				"message_type", ev.Message.Type,
				"message_id", ev.Message.ID)
		}
	}
}

// BookingURL is where a LINE user starts the booking form
func (s *ChatService) BookingURL(userID string) string {
	if s.liffID != "" {
		return "https://liff.line.me/" + s.liffID
	}
	return s.baseURL + "/book?uid=" + url.QueryEscape(userID)
}

func (s *ChatService) handleText(ctx context.Context, ev external.WebhookEvent) error {
	if strings.TrimSpace(ev.Message.Text) != BookingKeyword {
		return nil
	}
	if s.chat == nil || ev.ReplyToken == "" {
		return nil
	}
	return s.chat.Reply(ctx, ev.ReplyToken, external.TextMessages(MsgStartBooking, s.BookingURL(ev.Source.UserID)))
}

func (s *ChatService) handleSlip(ctx context.Context, ev external.WebhookEvent) error {
	userID := ev.Source.UserID

	slipURL, err := s.storeSlip(ctx, userID, ev.Message.ID)
	if err != nil {
		s.notifier.push(ctx, userID, MsgSlipUploadFailed)
		return err
	}

	customer, err := s.customerRepo.Latest(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		s.notifier.push(ctx, userID, MsgNoCustomer)
		return nil
	}

	if _, err := s.payments.AttachSlip(ctx, userID, slipURL); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.notifier.push(ctx, userID, MsgNoPendingBooking)
			return nil
		}
		return err
	}

	s.notifier.push(ctx, userID, MsgSlipReceived)
	return nil
}

func (s *ChatService) storeSlip(ctx context.Context, userID, messageID string) (string, error) {
	if s.chat == nil || s.storage == nil {
		return "", fmt.Errorf("slip storage is not configured")
	}

	data, contentType, err := s.chat.GetContent(ctx, messageID)
	if err != nil {
		return "", fmt.Errorf("failed to download slip: %w", err)
	}

	path := fmt.Sprintf("default/%s/%d.jpg", userID, s.now().UnixMilli())
	slipURL, err := s.storage.UploadSlip(ctx, path, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload slip: %w", err)
	}
	return slipURL, nil
}
