package mock

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/config"
	"github.com/acme/lead-outreach/internal/telephony"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
)

// Provider simulates the telephony integration for local development.
type Provider struct {
	successRate float64
	latency     time.Duration
	rng         *rand.Rand
}

// NewProvider constructs a mock provider.
func NewProvider(cfg config.TelephonyConfig) *Provider {
	latency := cfg.RequestTimeout / 10
	if latency <= 0 {
		latency = 50 * time.Millisecond
	}
	return &Provider{
		successRate: 0.95,
		latency:     latency,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// PlaceCall simulates placing a call.
func (p *Provider) PlaceCall(ctx context.Context, req telephony.CallRequest) (string, error) {
	return p.attempt(ctx, "CA")
}

// SendMessage simulates sending a message.
func (p *Provider) SendMessage(ctx context.Context, req telephony.MessageRequest) (string, error) {
	return p.attempt(ctx, "SM")
}

// ListPhoneNumbers returns a fixed set of numbers for local development.
func (p *Provider) ListPhoneNumbers(ctx context.Context) ([]telephony.PhoneNumber, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProvider, err)
	}
	return []telephony.PhoneNumber{
		{SID: "PN00000000000000000000000000000001", Number: "+15550100", FriendlyName: "Dev primary", VoiceEnabled: true, SMSEnabled: true},
		{SID: "PN00000000000000000000000000000002", Number: "+15550101", FriendlyName: "Dev secondary", VoiceEnabled: true, SMSEnabled: true},
	}, nil
}

func (p *Provider) attempt(ctx context.Context, sidPrefix string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", apperrors.ErrProvider, ctx.Err())
	case <-time.After(p.latency):
	}

	if p.rng.Float64() > p.successRate {
		return "", fmt.Errorf("%w: simulated failure", apperrors.ErrProvider)
	}

	sid := sidPrefix + strings.ReplaceAll(uuid.New().String(), "-", "")
	return sid, nil
}
