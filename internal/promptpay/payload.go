// Package promptpay builds Thai PromptPay merchant-presented QR payloads
// (EMVCo tag-length-value with a CRC-16/CCITT-FALSE trailer).
package promptpay

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	idPayloadFormat       = "00"
	idPOIMethod           = "01"
	idMerchantInfoBOT     = "29"
	idTransactionCurrency = "53"
	idTransactionAmount   = "54"
	idCountryCode         = "58"
	idCRC                 = "63"

	payloadFormatEMV = "01"
	poiMethodStatic  = "11"
	poiMethodDynamic = "12"

	merchantGUID  = "00"
	guidPromptPay = "A000000677010111"
	targetPhone   = "01"
	targetTaxID   = "02"
	targetEWallet = "03"
	currencyTHB   = "764"
	countryTH     = "TH"
)

// Payload returns the QR payload for target. A zero amount produces a static
// payload that lets the payer enter the amount.
func Payload(target string, amount decimal.Decimal) (string, error) {
	digits := sanitize(target)
	if digits == "" {
		return "", fmt.Errorf("promptpay target %q has no digits", target)
	}
	if amount.IsNegative() {
		return "", fmt.Errorf("promptpay amount must not be negative")
	}

	var targetType string
	switch {
	case len(digits) >= 15:
		targetType = targetEWallet
	case len(digits) >= 13:
		targetType = targetTaxID
	default:
		targetType = targetPhone
	}

	poi := poiMethodStatic
	if !amount.IsZero() {
		poi = poiMethodDynamic
	}

	var b strings.Builder
	b.WriteString(field(idPayloadFormat, payloadFormatEMV))
	b.WriteString(field(idPOIMethod, poi))
	b.WriteString(field(idMerchantInfoBOT,
		field(merchantGUID, guidPromptPay)+field(targetType, formatTarget(digits))))
	b.WriteString(field(idCountryCode, countryTH))
	b.WriteString(field(idTransactionCurrency, currencyTHB))
	if !amount.IsZero() {
		b.WriteString(field(idTransactionAmount, amount.StringFixed(2)))
	}

	b.WriteString(idCRC + "04")
	b.WriteString(fmt.Sprintf("%04X", CRC16([]byte(b.String()))))
	return b.String(), nil
}

func field(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatTarget converts a local phone number to 0066XXXXXXXXX; ids pass through
func formatTarget(digits string) string {
	if len(digits) >= 13 {
		return digits
	}
	if strings.HasPrefix(digits, "0") {
		digits = "66" + digits[1:]
	}
	if len(digits) < 13 {
		digits = strings.Repeat("0", 13-len(digits)) + digits
	}
	return digits
}

// CRC16 is CRC-16/CCITT-FALSE: poly 0x1021, init 0xFFFF, no reflection
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
