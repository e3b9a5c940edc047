package domain

import (
	"time"

	"github.com/google/uuid"
)

// InteractionKind distinguishes calls from text messages.
type InteractionKind string

const (
	KindCall    InteractionKind = "call"
	KindMessage InteractionKind = "message"
)

// Direction marks who initiated the interaction.
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// InteractionStatus is the provider-defined lifecycle label. The provider is
// the source of truth for ordering, so no transition graph is enforced here.
type InteractionStatus string

const (
	StatusQueued      InteractionStatus = "queued"
	StatusInitiated   InteractionStatus = "initiated"
	StatusRinging     InteractionStatus = "ringing"
	StatusInProgress  InteractionStatus = "in-progress"
	StatusCompleted   InteractionStatus = "completed"
	StatusBusy        InteractionStatus = "busy"
	StatusNoAnswer    InteractionStatus = "no-answer"
	StatusFailed      InteractionStatus = "failed"
	StatusSent        InteractionStatus = "sent"
	StatusDelivered   InteractionStatus = "delivered"
	StatusUndelivered InteractionStatus = "undelivered"
	StatusReceived    InteractionStatus = "received"
)

// Interaction is a single outbound or inbound call/message tied to a lead.
// ExternalID is assigned by the provider once it accepts the request and is
// the correlation key for status callbacks; a nil ExternalID on an outbound
// record means the provider was never reached (or rejected the request).
type Interaction struct {
	ID              uuid.UUID
	Kind            InteractionKind
	Direction       Direction
	LeadID          uuid.UUID
	TeamMemberID    *uuid.UUID
	ExternalID      *string
	Status          InteractionStatus
	DurationSeconds *int
	RecordingURL    *string
	Body            *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StatusUpdate carries a provider status callback after decoding.
type StatusUpdate struct {
	ExternalID      string
	Status          InteractionStatus
	DurationSeconds *int
	RecordingURL    *string
}

// InteractionEvent is one row of the append-only transition audit trail.
type InteractionEvent struct {
	InteractionID   uuid.UUID
	Status          InteractionStatus
	Source          string
	DurationSeconds *int
	RecordingURL    *string
	Detail          string
	OccurredAt      time.Time
}

// Event sources recorded in the audit trail.
const (
	EventSourceDispatch = "dispatch"
	EventSourceCallback = "callback"
	EventSourceInbound  = "inbound"
)
