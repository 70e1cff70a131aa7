package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"salonbook/internal/auth"
	"salonbook/internal/logger"
	"salonbook/internal/models"

	"github.com/shopspring/decimal"
)

// SmokeValidator - прогоняет сквозной сценарий бронирования против запущенного API
type SmokeValidator struct {
	baseURL    string
	adminToken string
	client     *http.Client
	// start is the slot used by the scenario; far ahead so it cannot collide with real bookings
	start time.Time
}

// NewSmokeValidator создает новый валидатор
func NewSmokeValidator(baseURL, adminToken string) *SmokeValidator {
	return &SmokeValidator{
		baseURL:    baseURL,
		adminToken: adminToken,
		client:     &http.Client{Timeout: 10 * time.Second},
		start:      time.Now().AddDate(5, 0, 0).Truncate(time.Hour),
	}
}

// ValidateAll проверяет основной сценарий: услуга, бронь, коллизия, отклонение и подтверждение депозита
func (v *SmokeValidator) ValidateAll(ctx context.Context) error {
	log := logger.WithContext(ctx)
	log.Info("Starting API smoke validation", "base_url", v.baseURL)

	if err := v.expectStatus(ctx, http.MethodGet, "/health", nil, false, http.StatusOK, nil); err != nil {
		return fmt.Errorf("health: %w", err)
	}

	var service models.Service
	err := v.expectStatus(ctx, http.MethodPost, "/api/admin/services", models.CreateServiceRequest{
		Name:         fmt.Sprintf("smoke-%d", time.Now().Unix()),
		Price:        decimal.NewFromInt(300),
		Deposit:      decimal.NewFromInt(100),
		DurationMins: 60,
	}, true, http.StatusCreated, &service)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	// leave the catalog as it was
	defer func() {
		_ = v.expectStatus(ctx, http.MethodDelete, "/api/admin/services/"+service.ID.String(), nil, true, http.StatusOK, nil)
	}()

	if err := v.expectStatus(ctx, http.MethodGet, "/api/services", nil, false, http.StatusOK, nil); err != nil {
		return fmt.Errorf("list services: %w", err)
	}

	var booking models.CreateBookingResponse
	err = v.expectStatus(ctx, http.MethodPost, "/api/bookings", models.CreateBookingRequest{
		ServiceID:  service.ID.String(),
		StartAt:    v.start,
		LineUserID: "smoke-validator",
		Name:       "Smoke",
		Phone:      "0800000000",
	}, false, http.StatusCreated, &booking)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	if booking.Status != models.StatusAwaitingDeposit || booking.PaymentStatus != models.PaymentUnpaid {
		return fmt.Errorf("create booking: unexpected state %s/%s", booking.Status, booking.PaymentStatus)
	}

	err = v.expectStatus(ctx, http.MethodPost, "/api/bookings", models.CreateBookingRequest{
		ServiceID:  service.ID.String(),
		StartAt:    v.start.Add(30 * time.Minute),
		LineUserID: "smoke-validator-2",
	}, false, http.StatusConflict, nil)
	if err != nil {
		return fmt.Errorf("overlapping booking: %w", err)
	}

	if err := v.expectStatus(ctx, http.MethodPost, "/api/admin/bookings/"+booking.ID+"/approve", nil, false, http.StatusUnauthorized, nil); err != nil {
		return fmt.Errorf("approve without token: %w", err)
	}

	var transition models.TransitionResponse
	err = v.expectStatus(ctx, http.MethodPost, "/api/admin/bookings/"+booking.ID+"/reject",
		models.RejectBookingRequest{Reason: "smoke"}, true, http.StatusOK, &transition)
	if err != nil {
		return fmt.Errorf("reject: %w", err)
	}
	if transition.PaymentStatus != models.PaymentRejected {
		return fmt.Errorf("reject: expected payment_status rejected, got %s", transition.PaymentStatus)
	}

	err = v.expectStatus(ctx, http.MethodPost, "/api/admin/bookings/"+booking.ID+"/approve", nil, true, http.StatusOK, &transition)
	if err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	if transition.Status != models.StatusConfirmed || transition.PaymentStatus != models.PaymentPaid {
		return fmt.Errorf("approve: unexpected state %s/%s", transition.Status, transition.PaymentStatus)
	}

	if err := v.expectStatus(ctx, http.MethodGet, "/api/bookings/"+booking.ID, nil, false, http.StatusOK, nil); err != nil {
		return fmt.Errorf("get booking: %w", err)
	}

	log.Info("API smoke validation passed", "booking_id", booking.ID)
	return nil
}

func (v *SmokeValidator) expectStatus(ctx context.Context, method, path string, body interface{}, admin bool, want int, out interface{}) error {
	resp, err := v.makeRequest(ctx, method, path, body, admin)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: expected %d, got %d: %s", method, path, want, resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
		}
	}
	return nil
}

func (v *SmokeValidator) makeRequest(ctx context.Context, method, path string, body interface{}, admin bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set(auth.HeaderAdminToken, v.adminToken)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	return resp, nil
}

// RunValidation запускает валидацию API
func RunValidation(baseURL, adminToken string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	return NewSmokeValidator(baseURL, adminToken).ValidateAll(ctx)
}
