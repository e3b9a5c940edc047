package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acme/lead-outreach/internal/config"
	"github.com/acme/lead-outreach/internal/telephony"
	telephonymock "github.com/acme/lead-outreach/internal/telephony/mock"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
	"github.com/acme/lead-outreach/pkg/logger"
)

type stubProvider struct {
	telephony.Provider
	numbers []telephony.PhoneNumber
	err     error
}

func (p *stubProvider) ListPhoneNumbers(ctx context.Context) ([]telephony.PhoneNumber, error) {
	return p.numbers, p.err
}

func newPhoneNumbersApp(provider telephony.Provider) *fiber.App {
	lg := &logger.Logger{Logger: zap.NewNop()}
	h := NewHandlerSet(lg, Services{Provider: provider}, nil)
	app := fiber.New(fiber.Config{ErrorHandler: h.ErrorHandler})
	h.Register(app)
	return app
}

func TestListPhoneNumbers(t *testing.T) {
	provider := &stubProvider{numbers: []telephony.PhoneNumber{
		{SID: "PN1", Number: "+15550100", FriendlyName: "Main line", VoiceEnabled: true, SMSEnabled: true},
		{SID: "PN2", Number: "+15550101", VoiceEnabled: true},
	}}
	app := newPhoneNumbersApp(provider)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/phone-numbers", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var decoded listPhoneNumbersResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(decoded.PhoneNumbers) != 2 {
		t.Fatalf("expected 2 numbers, got %d", len(decoded.PhoneNumbers))
	}
	if decoded.PhoneNumbers[0].Number != "+15550100" || !decoded.PhoneNumbers[0].SMSEnabled {
		t.Errorf("unexpected first number: %+v", decoded.PhoneNumbers[0])
	}
	if decoded.PhoneNumbers[1].SMSEnabled {
		t.Errorf("expected sms disabled on second number")
	}
}

func TestListPhoneNumbersProviderFailure(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("%w: auth failed", apperrors.ErrProvider)}
	app := newPhoneNumbersApp(provider)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/phone-numbers", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusBadGateway {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 502 on provider failure, got %d: %s", resp.StatusCode, body)
	}
}

func TestListPhoneNumbersMockProvider(t *testing.T) {
	provider := telephonymock.NewProvider(config.TelephonyConfig{RequestTimeout: time.Second})
	app := newPhoneNumbersApp(provider)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/phone-numbers", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var decoded listPhoneNumbersResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(decoded.PhoneNumbers) == 0 {
		t.Fatalf("expected the development numbers to be listed")
	}
}
