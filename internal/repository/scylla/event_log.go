package scylla

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
)

// EventLog persists the append-only interaction transition trail in Scylla.
// Rows are never updated; every dispatch, callback and inbound delivery
// appends one, which is what makes duplicate and out-of-order provider
// deliveries diagnosable after the fact.
type EventLog struct {
	session *gocql.Session
}

// NewEventLog creates a new event log.
func NewEventLog(session *gocql.Session) *EventLog {
	return &EventLog{session: session}
}

// Append writes one transition event.
func (l *EventLog) Append(ctx context.Context, event domain.InteractionEvent) error {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	var duration *int
	if event.DurationSeconds != nil {
		duration = event.DurationSeconds
	}

	if err := l.session.Query(`INSERT INTO events_by_interaction (interaction_id, occurred_at, event_id, status, source, duration_seconds, recording_url, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.InteractionID.String(), occurredAt, gocql.TimeUUID().String(), string(event.Status), event.Source,
		duration, event.RecordingURL, event.Detail,
	).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("event log: insert events_by_interaction: %w", err)
	}

	return nil
}

// ListByInteraction returns events for an interaction, oldest first.
func (l *EventLog) ListByInteraction(ctx context.Context, interactionID uuid.UUID, limit int) ([]domain.InteractionEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	iter := l.session.Query(`SELECT occurred_at, status, source, duration_seconds, recording_url, detail
		FROM events_by_interaction WHERE interaction_id = ? ORDER BY occurred_at ASC LIMIT ?`,
		interactionID.String(), limit).WithContext(ctx).Iter()

	events := make([]domain.InteractionEvent, 0, limit)

	var (
		occurredAt time.Time
		status     string
		source     string
		duration   *int
		recording  *string
		detail     string
	)

	for iter.Scan(&occurredAt, &status, &source, &duration, &recording, &detail) {
		event := domain.InteractionEvent{
			InteractionID: interactionID,
			Status:        domain.InteractionStatus(status),
			Source:        source,
			Detail:        detail,
			OccurredAt:    occurredAt,
		}
		if duration != nil {
			v := *duration
			event.DurationSeconds = &v
		}
		if recording != nil {
			v := *recording
			event.RecordingURL = &v
		}
		duration = nil
		recording = nil
		events = append(events, event)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("event log: iter close: %w", err)
	}

	return events, nil
}
