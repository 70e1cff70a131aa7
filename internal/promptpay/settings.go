package promptpay

import (
	"fmt"

	"salonbook/internal/models"
)

var requiredDigits = map[models.PromptPayType]int{
	models.PromptPayPhone:   10,
	models.PromptPayCitizen: 13,
	models.PromptPayWallet:  15,
}

// DefaultSettings is returned to admins before anything has been saved
func DefaultSettings() models.PromptPaySettings {
	return models.PromptPaySettings{PromptPayID: "", PromptPayType: models.PromptPayPhone}
}

// ValidateSettings checks the id length for its type, ignoring non-digit separators
func ValidateSettings(s models.PromptPaySettings) error {
	if s.PromptPayID == "" {
		return fmt.Errorf("PromptPay ID is required")
	}
	want, ok := requiredDigits[s.PromptPayType]
	if !ok {
		return fmt.Errorf("invalid PromptPay type %q", s.PromptPayType)
	}
	if got := len(sanitize(s.PromptPayID)); got != want {
		return fmt.Errorf("%s PromptPay ID must be %d digits, got %d", s.PromptPayType, want, got)
	}
	return nil
}
