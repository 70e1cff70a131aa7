package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBookingRequest - запрос на создание бронирования
type CreateBookingRequest struct {
	ServiceID     string        `json:"service_id" binding:"required"`
	StartAt       time.Time     `json:"start_at" binding:"required"`
	LineUserID    string        `json:"line_user_id" binding:"required"`
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// CreateBookingResponse - ответ при создании бронирования
type CreateBookingResponse struct {
	ID                  string          `json:"id"`
	StartAt             time.Time       `json:"start_at"`
	EndAt               time.Time       `json:"end_at"`
	DepositAmount       decimal.Decimal `json:"deposit_amount"`
	Status              BookingStatus   `json:"status"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	PaymentMethod       PaymentMethod   `json:"payment_method"`
	PromptPayQRCode     *string         `json:"promptpay_qr_code,omitempty"`
	PromptPayQRImageURL *string         `json:"promptpay_qr_image_url,omitempty"`
	Message             string          `json:"message"`
}

// UpdateBookingCustomerRequest - изменение данных клиента в бронировании
type UpdateBookingCustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	LineUserID string `json:"line_user_id" binding:"required"`
}

// RejectBookingRequest - причина отклонения депозита
type RejectBookingRequest struct {
	Reason string `json:"reason"`
}

// TransitionResponse - результат перехода состояния оплаты
type TransitionResponse struct {
	ID            string        `json:"id"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// CustomerBookingItem - элемент истории бронирований клиента
type CustomerBookingItem struct {
	ID            string          `json:"id"`
	StartAt       time.Time       `json:"start_at"`
	Status        BookingStatus   `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	ServiceName   string          `json:"service_name"`
	ServicePrice  decimal.Decimal `json:"service_price"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
}

// LatestCustomerResponse - последний профиль клиента по LINE id
type LatestCustomerResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Found bool   `json:"found"`
}

// CreateServiceRequest - создание услуги
type CreateServiceRequest struct {
	Name         string          `json:"name" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	Deposit      decimal.Decimal `json:"deposit"`
	DurationMins int             `json:"duration_mins"`
	ImageURL     *string         `json:"image_url"`
	IsActive     *bool           `json:"is_active"`
}

// UpdateServiceRequest - изменение одной услуги; пустые поля не меняются
type UpdateServiceRequest struct {
	Name         *string          `json:"name"`
	Price        *decimal.Decimal `json:"price"`
	Deposit      *decimal.Decimal `json:"deposit"`
	DurationMins *int             `json:"duration_mins"`
	ImageURL     *string          `json:"image_url"`
	IsActive     *bool            `json:"is_active"`
}

// DepositUpdate - элемент массового изменения депозитов
type DepositUpdate struct {
	ID      string          `json:"id" binding:"required"`
	Deposit decimal.Decimal `json:"deposit"`
}

// UpdateDepositsRequest - массовое изменение депозитов
type UpdateDepositsRequest struct {
	Services []DepositUpdate `json:"services" binding:"required,dive"`
}

// SavePromptPaySettingsRequest - настройки PromptPay
type SavePromptPaySettingsRequest struct {
	PromptPayID   string        `json:"promptpayId" binding:"required"`
	PromptPayType PromptPayType `json:"promptpayType" binding:"required"`
}

// AdminQRRequest - генерация QR администратором по бронированию или услуге
type AdminQRRequest struct {
	BookingID string `json:"booking_id"`
	ServiceID string `json:"service_id"`
}

// AdminQRResponse - ответ генерации QR для администратора
type AdminQRResponse struct {
	QRCodeData    string          `json:"qr_code_data"`
	Amount        decimal.Decimal `json:"amount"`
	ServiceName   string          `json:"service_name"`
	PromptPayID   string          `json:"promptpay_id"`
	PromptPayType PromptPayType   `json:"promptpay_type"`
}

// CustomerQRRequest - генерация QR клиентом
type CustomerQRRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

// QRBookingInfo - сведения о бронировании рядом с QR
type QRBookingInfo struct {
	BookingID     string          `json:"bookingId"`
	ServiceName   string          `json:"serviceName"`
	Amount        decimal.Decimal `json:"amount"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
}

// CustomerQRResponse - ответ генерации QR для клиента
type CustomerQRResponse struct {
	QRData      string        `json:"qrData"`
	BookingInfo QRBookingInfo `json:"bookingInfo"`
}

// DailyReportItem - строка дневного отчёта
type DailyReportItem struct {
	ID            string          `json:"id"`
	StartAt       time.Time       `json:"start_at"`
	ServiceName   string          `json:"service_name"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Status        BookingStatus   `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
}

// DailyReport - дневной отчёт по бронированиям
type DailyReport struct {
	Date         string            `json:"date"`
	Bookings     []DailyReportItem `json:"bookings"`
	Total        int               `json:"total"`
	Confirmed    int               `json:"confirmed"`
	Awaiting     int               `json:"awaiting_deposit"`
	DepositTotal decimal.Decimal   `json:"deposit_total"`
}
