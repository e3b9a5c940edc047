package twilio

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/acme/lead-outreach/internal/config"
	"github.com/acme/lead-outreach/internal/telephony"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
)

// Provider places calls and sends messages through the Twilio REST API.
type Provider struct {
	client *twilio.RestClient
}

// NewProvider constructs a Twilio-backed provider. The request timeout bounds
// every API invocation; a timed-out request is indistinguishable from any
// other provider failure to callers.
func NewProvider(cfg config.TelephonyConfig) *Provider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	if cfg.RequestTimeout > 0 {
		client.SetTimeout(cfg.RequestTimeout)
	}
	return &Provider{client: client}
}

// PlaceCall creates an outbound call and returns the call SID.
func (p *Provider) PlaceCall(ctx context.Context, req telephony.CallRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: place call: %v", apperrors.ErrProvider, err)
	}

	params := &twilioapi.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(req.From)
	params.SetTwiml(req.TwiML)
	if req.StatusCallbackURL != "" {
		params.SetStatusCallback(req.StatusCallbackURL)
	}
	if len(req.StatusEvents) > 0 {
		params.SetStatusCallbackEvent(req.StatusEvents)
	}

	call, err := p.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("%w: place call: %v", apperrors.ErrProvider, err)
	}
	if call.Sid == nil || *call.Sid == "" {
		return "", fmt.Errorf("%w: place call: empty sid in response", apperrors.ErrProvider)
	}

	return *call.Sid, nil
}

// SendMessage creates an outbound SMS and returns the message SID.
func (p *Provider) SendMessage(ctx context.Context, req telephony.MessageRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: send message: %v", apperrors.ErrProvider, err)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(req.To)
	params.SetFrom(req.From)
	params.SetBody(req.Body)
	if req.StatusCallbackURL != "" {
		params.SetStatusCallback(req.StatusCallbackURL)
	}

	msg, err := p.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("%w: send message: %v", apperrors.ErrProvider, err)
	}
	if msg.Sid == nil || *msg.Sid == "" {
		return "", fmt.Errorf("%w: send message: empty sid in response", apperrors.ErrProvider)
	}

	return *msg.Sid, nil
}

// ListPhoneNumbers returns the account's incoming phone numbers.
func (p *Provider) ListPhoneNumbers(ctx context.Context) ([]telephony.PhoneNumber, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: list phone numbers: %v", apperrors.ErrProvider, err)
	}

	params := &twilioapi.ListIncomingPhoneNumberParams{}
	params.SetPageSize(50)

	records, err := p.client.Api.ListIncomingPhoneNumber(params)
	if err != nil {
		return nil, fmt.Errorf("%w: list phone numbers: %v", apperrors.ErrProvider, err)
	}

	numbers := make([]telephony.PhoneNumber, 0, len(records))
	for _, record := range records {
		number := telephony.PhoneNumber{}
		if record.Sid != nil {
			number.SID = *record.Sid
		}
		if record.PhoneNumber != nil {
			number.Number = *record.PhoneNumber
		}
		if record.FriendlyName != nil {
			number.FriendlyName = *record.FriendlyName
		}
		if record.Capabilities != nil {
			number.VoiceEnabled = record.Capabilities.Voice
			number.SMSEnabled = record.Capabilities.Sms
		}
		numbers = append(numbers, number)
	}

	return numbers, nil
}
