package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salonbook/internal/auth"
	"salonbook/internal/external"
	"salonbook/internal/middleware"
	"salonbook/internal/models"
	"salonbook/internal/repository"
	"salonbook/internal/repository/memory"
	"salonbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminToken    = "test-admin-token"
	channelSecret = "test-channel-secret"
)

type testEnv struct {
	router *gin.Engine
	repos  *repository.Repositories
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := memory.New().Repositories()
	services := service.NewServices(repos, service.Deps{}, service.Options{BaseURL: "https://salon.example"})
	h := NewHandlers(services, external.NewLineClient(external.LineConfig{ChannelSecret: channelSecret}))

	r := gin.New()
	r.Use(middleware.RequestID())

	api := r.Group("/api")
	{
		api.GET("/services", h.ListServices)
		api.GET("/services/search", h.SearchServices)
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings/:id", h.GetBooking)
		api.PUT("/bookings/:id/customer", h.UpdateBookingCustomer)
		api.GET("/customers/:lineUserId/latest", h.LatestCustomer)
		api.GET("/customers/:lineUserId/bookings", h.CustomerBookings)
		api.POST("/promptpay/generate", h.CustomerGenerateQR)
		api.GET("/promptpay/qr.png", h.QRImage)
		api.POST("/line/webhook", h.LineWebhook)

		admin := api.Group("/admin", middleware.AdminAuth(auth.NewGuard(adminToken)))
		{
			admin.GET("/bookings", h.ListAdminBookings)
			admin.POST("/bookings/:id/approve", h.ApproveBooking)
			admin.POST("/bookings/:id/reject", h.RejectBooking)
			admin.POST("/bookings/:id/confirm-qr", h.ConfirmQRPayment)
			admin.POST("/services", h.CreateService)
			admin.PUT("/services/:id", h.UpdateService)
			admin.DELETE("/services/:id", h.DeleteService)
			admin.PUT("/deposits", h.UpdateDeposits)
			admin.GET("/promptpay/settings", h.GetPromptPaySettings)
			admin.POST("/promptpay/settings", h.SavePromptPaySettings)
			admin.POST("/promptpay/generate", h.AdminGenerateQR)
			admin.GET("/reports/daily", h.DailyReport)
		}
	}

	return &testEnv{router: r, repos: repos}
}

func (e *testEnv) do(method, path string, body interface{}, admin bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(auth.HeaderAdminToken, adminToken)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) addService(t *testing.T) *models.Service {
	t.Helper()
	svc := &models.Service{
		Name:         "ตัดผม",
		Price:        decimal.NewFromInt(600),
		Deposit:      decimal.NewFromInt(200),
		DurationMins: 60,
		IsActive:     true,
	}
	require.NoError(t, e.repos.Services.Create(context.Background(), svc))
	return svc
}

var startAt = time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)

func (e *testEnv) createBooking(t *testing.T, svc *models.Service, start time.Time) *models.CreateBookingResponse {
	t.Helper()
	w := e.do(http.MethodPost, "/api/bookings", models.CreateBookingRequest{
		ServiceID:  svc.ID.String(),
		StartAt:    start,
		LineUserID: "U1",
		Name:       "Somchai",
		Phone:      "0812345678",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response models.CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return &response
}

func TestCreateBooking(t *testing.T) {
	env := setupRouter(t)
	svc := env.addService(t)

	response := env.createBooking(t, svc, startAt)
	assert.Equal(t, models.StatusAwaitingDeposit, response.Status)
	assert.Equal(t, models.PaymentUnpaid, response.PaymentStatus)
	assert.True(t, response.DepositAmount.Equal(decimal.NewFromInt(200)))

	w := env.do(http.MethodGet, "/api/bookings/"+response.ID, nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	var details models.BookingDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "ตัดผม", details.ServiceName)
	assert.Equal(t, "Somchai", details.CustomerName)
}

func TestCreateBooking_SlotTaken(t *testing.T) {
	env := setupRouter(t)
	svc := env.addService(t)
	env.createBooking(t, svc, startAt)

	w := env.do(http.MethodPost, "/api/bookings", models.CreateBookingRequest{
		ServiceID:  svc.ID.String(),
		StartAt:    startAt.Add(30 * time.Minute),
		LineUserID: "U2",
	}, false)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"`+service.MsgSlotTaken+`"}`, w.Body.String())
}

func TestCreateBooking_BadRequests(t *testing.T) {
	env := setupRouter(t)
	svc := env.addService(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"missing fields", map[string]string{"service_id": svc.ID.String()}, http.StatusBadRequest},
		{"unknown service", models.CreateBookingRequest{ServiceID: "9b2f6f0e-55a4-4c6b-9df6-1c1a2f0d4e11", StartAt: startAt, LineUserID: "U1"}, http.StatusBadRequest},
		{"malformed service id", models.CreateBookingRequest{ServiceID: "x", StartAt: startAt, LineUserID: "U1"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/bookings", tt.body, false)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := env.do(http.MethodGet, "/api/bookings/not-a-uuid", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(http.MethodGet, "/api/bookings/9b2f6f0e-55a4-4c6b-9df6-1c1a2f0d4e11", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminTransitions(t *testing.T) {
	env := setupRouter(t)
	svc := env.addService(t)
	booking := env.createBooking(t, svc, startAt)
	base := "/api/admin/bookings/" + booking.ID

	w := env.do(http.MethodPost, base+"/approve", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, base+"/reject", models.RejectBookingRequest{Reason: "สลิปไม่ชัด"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	var rejected models.TransitionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rejected))
	assert.Equal(t, models.StatusAwaitingDeposit, rejected.Status)
	assert.Equal(t, models.PaymentRejected, rejected.PaymentStatus)

	// reject without a body
	w = env.do(http.MethodPost, base+"/reject", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, base+"/confirm-qr", nil, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPost, base+"/approve", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var approved models.TransitionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	assert.Equal(t, models.StatusConfirmed, approved.Status)
	assert.Equal(t, models.PaymentPaid, approved.PaymentStatus)

	w = env.do(http.MethodGet, "/api/admin/bookings?status=confirmed", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.BookingDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = env.do(http.MethodPost, "/api/admin/bookings/9b2f6f0e-55a4-4c6b-9df6-1c1a2f0d4e11/approve", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServicesAdmin(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/api/admin/services", models.CreateServiceRequest{
		Name:         "ทำเล็บ",
		Price:        decimal.NewFromInt(350),
		Deposit:      decimal.NewFromInt(100),
		DurationMins: 45,
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Service
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(http.MethodPut, "/api/admin/deposits", models.UpdateDepositsRequest{
		Services: []models.DepositUpdate{{ID: created.ID.String(), Deposit: decimal.NewFromInt(150)}},
	}, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/services", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Service
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].Deposit.Equal(decimal.NewFromInt(150)))

	w = env.do(http.MethodDelete, "/api/admin/services/"+created.ID.String(), nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/services/search?q=เล็บ", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPromptPayEndpoints(t *testing.T) {
	env := setupRouter(t)
	svc := env.addService(t)
	booking := env.createBooking(t, svc, startAt)

	w := env.do(http.MethodPost, "/api/admin/promptpay/settings", map[string]string{
		"promptpayId":   "0812345678",
		"promptpayType": "phone",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/api/promptpay/generate", map[string]string{"bookingId": booking.ID}, false)
	require.Equal(t, http.StatusOK, w.Code)
	var qr models.CustomerQRResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &qr))
	assert.Contains(t, qr.QRData, "5406200.00")

	w = env.do(http.MethodGet, "/api/promptpay/qr.png?data="+qr.QRData, nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = env.do(http.MethodGet, "/api/promptpay/qr.png", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/promptpay/qr.png?data="+strings.Repeat("9", 3000), nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCustomerEndpoints(t *testing.T) {
	env := setupRouter(t)
	svc := env.addService(t)
	booking := env.createBooking(t, svc, startAt)

	w := env.do(http.MethodGet, "/api/customers/U1/latest", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Somchai","phone":"0812345678","found":true}`, w.Body.String())

	w = env.do(http.MethodPut, "/api/bookings/"+booking.ID+"/customer", models.UpdateBookingCustomerRequest{
		Name: "Somsri", Phone: "0899999999", LineUserID: "U2",
	}, false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/customers/U1/bookings", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.CustomerBookingItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history, 1)
}

func TestDailyReportEndpoint(t *testing.T) {
	env := setupRouter(t)
	svc := env.addService(t)
	env.createBooking(t, svc, startAt)

	w := env.do(http.MethodGet, "/api/admin/reports/daily?date=2025-03-10", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var report models.DailyReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Total)

	w = env.do(http.MethodGet, "/api/admin/reports/daily", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLineWebhookSignature(t *testing.T) {
	env := setupRouter(t)
	body := []byte(`{"destination":"x","events":[]}`)

	req, _ := http.NewRequest(http.MethodPost, "/api/line/webhook", bytes.NewReader(body))
	req.Header.Set(external.HeaderLineSignature, "bm90LWEtc2lnbmF0dXJl")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	req, _ = http.NewRequest(http.MethodPost, "/api/line/webhook", bytes.NewReader(body))
	req.Header.Set(external.HeaderLineSignature, base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
