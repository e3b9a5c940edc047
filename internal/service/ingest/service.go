package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acme/lead-outreach/internal/correlation"
	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/queue"
	"github.com/acme/lead-outreach/internal/repository"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
	"github.com/acme/lead-outreach/pkg/logger"
)

// Publisher emits interaction events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event queue.InteractionEvent) error
}

// Service applies asynchronous provider notifications to local records.
type Service struct {
	correlations *correlation.Store
	interactions repository.InteractionRepository
	leads        repository.LeadRepository
	events       Publisher
	eventLog     repository.InteractionEventLog
	logger       *logger.Logger
}

// NewService builds the ingest service. events and eventLog may be nil.
func NewService(
	correlations *correlation.Store,
	interactions repository.InteractionRepository,
	leads repository.LeadRepository,
	events Publisher,
	eventLog repository.InteractionEventLog,
	lg *logger.Logger,
) *Service {
	return &Service{
		correlations: correlations,
		interactions: interactions,
		leads:        leads,
		events:       events,
		eventLog:     eventLog,
		logger:       lg,
	}
}

// InboundMessage carries an unsolicited inbound SMS notification.
type InboundMessage struct {
	ExternalID string
	From       string
	Body       string
}

// IngestStatus applies a provider status callback to the interaction the
// external id resolves to.
//
// The status is written unconditionally: the provider owns event ordering and
// delivers at least once, so the last write wins and a re-delivered status is
// an idempotent overwrite of the same value. Unknown external ids are
// rejected rather than spawning records.
func (s *Service) IngestStatus(ctx context.Context, update domain.StatusUpdate) error {
	if update.Status == "" {
		return fmt.Errorf("%w: status is required", apperrors.ErrValidation)
	}

	interaction, err := s.correlations.Resolve(ctx, update.ExternalID)
	if err != nil {
		return fmt.Errorf("ingest: resolve %s: %w", update.ExternalID, err)
	}

	duration := update.DurationSeconds
	recording := update.RecordingURL
	if interaction.Kind != domain.KindCall {
		// Call-only fields never land on a message record.
		duration = nil
		recording = nil
	}

	if err := s.interactions.ApplyStatus(ctx, interaction.ID, update.Status, duration, recording); err != nil {
		return fmt.Errorf("ingest: apply status: %w", err)
	}

	if interaction.Kind == domain.KindCall && update.Status == domain.StatusCompleted {
		s.advanceLead(ctx, interaction.LeadID)
	}

	s.appendEvent(ctx, domain.InteractionEvent{
		InteractionID:   interaction.ID,
		Status:          update.Status,
		Source:          domain.EventSourceCallback,
		DurationSeconds: duration,
		RecordingURL:    recording,
		OccurredAt:      time.Now().UTC(),
	})
	s.publishEvent(ctx, interaction, update.Status, duration, update.ExternalID)

	return nil
}

// IngestInbound records an unsolicited inbound message from a known lead.
// An unrecognized sender is an expected case, not an error: the message is
// dropped and the caller acks the provider normally.
func (s *Service) IngestInbound(ctx context.Context, msg InboundMessage) error {
	if msg.ExternalID == "" || msg.From == "" {
		return fmt.Errorf("%w: external id and sender are required", apperrors.ErrValidation)
	}

	lead, err := s.leads.FindByPhone(ctx, msg.From)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Debug("inbound message from unknown sender dropped", zap.String("from", msg.From))
			return nil
		}
		return fmt.Errorf("ingest: find lead by phone: %w", err)
	}

	now := time.Now().UTC()
	externalID := msg.ExternalID
	body := msg.Body
	interaction := &domain.Interaction{
		ID:         uuid.New(),
		Kind:       domain.KindMessage,
		Direction:  domain.DirectionInbound,
		LeadID:     lead.ID,
		ExternalID: &externalID,
		Status:     domain.StatusReceived,
		Body:       &body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.interactions.Create(ctx, interaction); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Provider re-delivered a message we already recorded.
			s.logger.Debug("duplicate inbound delivery ignored", zap.String("external_id", msg.ExternalID))
			return nil
		}
		return fmt.Errorf("ingest: persist inbound message: %w", err)
	}

	s.correlations.Bind(ctx, msg.ExternalID, interaction.ID)
	s.appendEvent(ctx, domain.InteractionEvent{
		InteractionID: interaction.ID,
		Status:        domain.StatusReceived,
		Source:        domain.EventSourceInbound,
		OccurredAt:    now,
	})
	s.publishEvent(ctx, interaction, domain.StatusReceived, nil, msg.ExternalID)

	return nil
}

// advanceLead moves the lead to contacted after a completed call. Isolated
// side effect: its failure is logged but never fails the status update.
func (s *Service) advanceLead(ctx context.Context, leadID uuid.UUID) {
	if err := s.leads.UpdateStatus(ctx, leadID, domain.LeadStatusContacted); err != nil {
		s.logger.Warn("lead status advancement failed",
			zap.String("lead_id", leadID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) appendEvent(ctx context.Context, event domain.InteractionEvent) {
	if s.eventLog == nil {
		return
	}
	if err := s.eventLog.Append(ctx, event); err != nil {
		s.logger.Warn("event log append failed", zap.String("interaction_id", event.InteractionID.String()), zap.Error(err))
	}
}

func (s *Service) publishEvent(ctx context.Context, interaction *domain.Interaction, status domain.InteractionStatus, duration *int, externalID string) {
	if s.events == nil {
		return
	}
	event := queue.InteractionEvent{
		InteractionID:   interaction.ID,
		LeadID:          interaction.LeadID,
		Kind:            interaction.Kind,
		Direction:       interaction.Direction,
		Status:          status,
		ExternalID:      externalID,
		DurationSeconds: duration,
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("interaction_id", interaction.ID.String()), zap.Error(err))
	}
}
