package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
)

// InteractionEvent is the wire form of an interaction state change, published
// for downstream consumers (analytics, CRM sync). It mirrors what was written
// locally; consumers must tolerate duplicates the same way the store does.
type InteractionEvent struct {
	InteractionID   uuid.UUID                `json:"interaction_id"`
	LeadID          uuid.UUID                `json:"lead_id"`
	Kind            domain.InteractionKind   `json:"kind"`
	Direction       domain.Direction         `json:"direction"`
	Status          domain.InteractionStatus `json:"status"`
	ExternalID      string                   `json:"external_id,omitempty"`
	DurationSeconds *int                     `json:"duration_seconds,omitempty"`
	OccurredAt      time.Time                `json:"occurred_at"`
}
