package promptpay

import (
	"fmt"
	"net/url"

	apperrors "salonbook/internal/errors"

	"github.com/skip2/go-qrcode"
)

// DefaultImageSize is the PNG edge length in pixels
const DefaultImageSize = 256

// MaxImagePayload bounds the data rendered; real PromptPay payloads are about 100 bytes
const MaxImagePayload = 512

// PNG renders payload as a QR code image
func PNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty qr payload: %w", apperrors.ErrValidation)
	}
	if len(payload) > MaxImagePayload {
		return nil, fmt.Errorf("qr payload longer than %d bytes: %w", MaxImagePayload, apperrors.ErrValidation)
	}
	if size <= 0 {
		size = DefaultImageSize
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}
	return png, nil
}

// ImageURL is the public URL serving the PNG for payload
func ImageURL(baseURL, payload string) string {
	return baseURL + "/api/promptpay/qr.png?data=" + url.QueryEscape(payload)
}
