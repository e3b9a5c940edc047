package telephony

import "context"

// CallRequest describes an outbound call to place.
type CallRequest struct {
	To                string
	From              string
	TwiML             string
	StatusCallbackURL string
	StatusEvents      []string
}

// MessageRequest describes an outbound SMS to send.
type MessageRequest struct {
	To                string
	From              string
	Body              string
	StatusCallbackURL string
}

// PhoneNumber is a provider-owned number available as an outbound caller id.
type PhoneNumber struct {
	SID          string
	Number       string
	FriendlyName string
	VoiceEnabled bool
	SMSEnabled   bool
}

// Provider abstracts the telephony integration. PlaceCall and SendMessage
// return the provider-assigned identifier synchronously; the real-world
// outcome arrives later through the status callback URL.
type Provider interface {
	PlaceCall(ctx context.Context, req CallRequest) (string, error)
	SendMessage(ctx context.Context, req MessageRequest) (string, error)
	// ListPhoneNumbers returns the numbers the account can dispatch from.
	ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error)
}
