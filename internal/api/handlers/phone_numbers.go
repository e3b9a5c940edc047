package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type phoneNumberResponse struct {
	SID          string `json:"sid"`
	Number       string `json:"phone_number"`
	FriendlyName string `json:"friendly_name,omitempty"`
	VoiceEnabled bool   `json:"voice_enabled"`
	SMSEnabled   bool   `json:"sms_enabled"`
}

type listPhoneNumbersResponse struct {
	PhoneNumbers []phoneNumberResponse `json:"phone_numbers"`
}

// listPhoneNumbers returns the provider numbers available as a from_number
// for dispatching calls and messages.
func (h *HandlerSet) listPhoneNumbers(ctx *fiber.Ctx) error {
	numbers, err := h.svc.Provider.ListPhoneNumbers(ctx.Context())
	if err != nil {
		return translateError(err)
	}

	resp := listPhoneNumbersResponse{PhoneNumbers: make([]phoneNumberResponse, 0, len(numbers))}
	for _, number := range numbers {
		resp.PhoneNumbers = append(resp.PhoneNumbers, phoneNumberResponse{
			SID:          number.SID,
			Number:       number.Number,
			FriendlyName: number.FriendlyName,
			VoiceEnabled: number.VoiceEnabled,
			SMSEnabled:   number.SMSEnabled,
		})
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}
