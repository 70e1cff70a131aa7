package promptpay

import (
	"bytes"
	"strings"
	"testing"

	apperrors "salonbook/internal/errors"
	"salonbook/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC16CheckValue(t *testing.T) {
	assert.Equal(t, uint16(0x29B1), CRC16([]byte("123456789")))
}

func TestPayload(t *testing.T) {
	tests := []struct {
		name   string
		target string
		amount decimal.Decimal
		want   string
	}{
		{
			name:   "phone with amount",
			target: "0812345678",
			amount: decimal.RequireFromString("4.22"),
			want:   "00020101021229370016A000000677010111011300668123456785802TH530376454044.2263045D49",
		},
		{
			name:   "phone with separators and no amount",
			target: "081-234-5678",
			amount: decimal.Zero,
			want:   "00020101021129370016A000000677010111011300668123456785802TH530376463045D82",
		},
		{
			name:   "citizen id",
			target: "1234567890123",
			amount: decimal.NewFromInt(500),
			want:   "00020101021229370016A000000677010111021312345678901235802TH53037645406500.0063041659",
		},
		{
			name:   "e-wallet id",
			target: "123456789012345",
			amount: decimal.RequireFromString("100.5"),
			want:   "00020101021229390016A00000067701011103151234567890123455802TH53037645406100.50630429E1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Payload(tt.target, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPayloadRejectsBadInput(t *testing.T) {
	_, err := Payload("n/a", decimal.NewFromInt(1))
	assert.Error(t, err)

	_, err = Payload("0812345678", decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestValidateSettings(t *testing.T) {
	assert.NoError(t, ValidateSettings(models.PromptPaySettings{PromptPayID: "081-234-5678", PromptPayType: models.PromptPayPhone}))
	assert.NoError(t, ValidateSettings(models.PromptPaySettings{PromptPayID: "1234567890123", PromptPayType: models.PromptPayCitizen}))
	assert.NoError(t, ValidateSettings(models.PromptPaySettings{PromptPayID: "123456789012345", PromptPayType: models.PromptPayWallet}))

	assert.Error(t, ValidateSettings(models.PromptPaySettings{PromptPayID: "", PromptPayType: models.PromptPayPhone}))
	assert.Error(t, ValidateSettings(models.PromptPaySettings{PromptPayID: "08123", PromptPayType: models.PromptPayPhone}))
	assert.Error(t, ValidateSettings(models.PromptPaySettings{PromptPayID: "0812345678", PromptPayType: "bank"}))
}

func TestPNG(t *testing.T) {
	png, err := PNG("00020101021129370016A000000677010111011300668123456785802TH530376463045D82", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = PNG("", 128)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = PNG(strings.Repeat("9", MaxImagePayload+1), 128)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "https://salon.example/api/promptpay/qr.png?data=a%2Bb", ImageURL("https://salon.example", "a+b"))
}
