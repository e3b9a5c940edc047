package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acme/lead-outreach/internal/correlation"
	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/queue"
	"github.com/acme/lead-outreach/internal/repository"
	"github.com/acme/lead-outreach/internal/telephony"
	apperrors "github.com/acme/lead-outreach/pkg/errors"
	"github.com/acme/lead-outreach/pkg/logger"
)

// Publisher emits interaction events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event queue.InteractionEvent) error
}

// Options carries the provider-facing settings for outbound requests.
type Options struct {
	CallbackBaseURL string
	RequestTimeout  time.Duration
	StatusEvents    []string
}

// Service creates outbound interactions and hands them to the provider.
//
// The interaction row is persisted before the provider is contacted, so a
// provider failure leaves a queued record with no external id. That orphan is
// deliberate: it is the evidence an operator needs to retry or clean up, and
// rolling it back would erase it.
type Service struct {
	leads        repository.LeadRepository
	team         repository.TeamMemberRepository
	interactions repository.InteractionRepository
	correlations *correlation.Store
	provider     telephony.Provider
	events       Publisher
	eventLog     repository.InteractionEventLog
	opts         Options
	logger       *logger.Logger
}

// NewService builds the dispatch service. events and eventLog may be nil.
func NewService(
	leads repository.LeadRepository,
	team repository.TeamMemberRepository,
	interactions repository.InteractionRepository,
	correlations *correlation.Store,
	provider telephony.Provider,
	events Publisher,
	eventLog repository.InteractionEventLog,
	opts Options,
	lg *logger.Logger,
) *Service {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	return &Service{
		leads:        leads,
		team:         team,
		interactions: interactions,
		correlations: correlations,
		provider:     provider,
		events:       events,
		eventLog:     eventLog,
		opts:         opts,
		logger:       lg,
	}
}

// CallInput encapsulates the arguments for dispatching a call.
type CallInput struct {
	LeadID       uuid.UUID
	TeamMemberID uuid.UUID
	FromNumber   string
}

// MessageInput encapsulates the arguments for dispatching a message.
type MessageInput struct {
	LeadID       uuid.UUID
	TeamMemberID *uuid.UUID
	FromNumber   string
	Body         string
}

// Result reports a successful dispatch.
type Result struct {
	InteractionID uuid.UUID
	ExternalID    string
}

// DispatchCall places an outbound call bridging the team member to the lead.
func (s *Service) DispatchCall(ctx context.Context, input CallInput) (*Result, error) {
	if input.LeadID == uuid.Nil || input.TeamMemberID == uuid.Nil {
		return nil, fmt.Errorf("%w: lead id and team member id are required", apperrors.ErrValidation)
	}
	if input.FromNumber == "" {
		return nil, fmt.Errorf("%w: from number is required", apperrors.ErrValidation)
	}

	lead, err := s.leads.Get(ctx, input.LeadID)
	if err != nil {
		return nil, fmt.Errorf("dispatch: lookup lead: %w", err)
	}
	member, err := s.team.Get(ctx, input.TeamMemberID)
	if err != nil {
		return nil, fmt.Errorf("dispatch: lookup team member: %w", err)
	}

	memberID := input.TeamMemberID
	interaction := s.newInteraction(domain.KindCall, lead.ID, &memberID, nil)
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, fmt.Errorf("dispatch: persist interaction: %w", err)
	}
	s.appendEvent(ctx, interaction.ID, domain.StatusQueued, domain.EventSourceDispatch, "call created")

	req := telephony.CallRequest{
		To:                lead.Phone,
		From:              input.FromNumber,
		TwiML:             dialTwiML(input.FromNumber, member.Phone),
		StatusCallbackURL: s.opts.CallbackBaseURL + "/webhooks/calls/status",
		StatusEvents:      s.opts.StatusEvents,
	}

	externalID, err := s.invoke(ctx, interaction, func(pctx context.Context) (string, error) {
		return s.provider.PlaceCall(pctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, interaction, externalID)
	return &Result{InteractionID: interaction.ID, ExternalID: externalID}, nil
}

// DispatchMessage sends an outbound SMS to the lead.
func (s *Service) DispatchMessage(ctx context.Context, input MessageInput) (*Result, error) {
	if input.LeadID == uuid.Nil {
		return nil, fmt.Errorf("%w: lead id is required", apperrors.ErrValidation)
	}
	if input.FromNumber == "" {
		return nil, fmt.Errorf("%w: from number is required", apperrors.ErrValidation)
	}
	if input.Body == "" {
		return nil, fmt.Errorf("%w: message body is required", apperrors.ErrValidation)
	}

	lead, err := s.leads.Get(ctx, input.LeadID)
	if err != nil {
		return nil, fmt.Errorf("dispatch: lookup lead: %w", err)
	}
	if input.TeamMemberID != nil {
		if _, err := s.team.Get(ctx, *input.TeamMemberID); err != nil {
			return nil, fmt.Errorf("dispatch: lookup team member: %w", err)
		}
	}

	body := input.Body
	interaction := s.newInteraction(domain.KindMessage, lead.ID, input.TeamMemberID, &body)
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, fmt.Errorf("dispatch: persist interaction: %w", err)
	}
	s.appendEvent(ctx, interaction.ID, domain.StatusQueued, domain.EventSourceDispatch, "message created")

	req := telephony.MessageRequest{
		To:                lead.Phone,
		From:              input.FromNumber,
		Body:              input.Body,
		StatusCallbackURL: s.opts.CallbackBaseURL + "/webhooks/messages/status",
	}

	externalID, err := s.invoke(ctx, interaction, func(pctx context.Context) (string, error) {
		return s.provider.SendMessage(pctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, interaction, externalID)
	return &Result{InteractionID: interaction.ID, ExternalID: externalID}, nil
}

// invoke runs the provider call with a bounded timeout and attaches the
// returned external id. The queued row is left untouched on provider failure.
func (s *Service) invoke(ctx context.Context, interaction *domain.Interaction, call func(context.Context) (string, error)) (string, error) {
	pctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	externalID, err := call(pctx)
	if err != nil {
		s.appendEvent(ctx, interaction.ID, domain.StatusQueued, domain.EventSourceDispatch, "provider invocation failed: "+err.Error())
		s.logger.Warn("provider invocation failed, queued record left for inspection",
			zap.String("interaction_id", interaction.ID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("dispatch: invoke provider: %w", err)
	}

	if err := s.interactions.AttachExternalID(ctx, interaction.ID, externalID); err != nil {
		// The provider accepted the request but the local record has no
		// external id; callbacks for it will land as not-found until an
		// operator reconciles.
		s.logger.Error("failed to attach external id after provider accept",
			zap.String("interaction_id", interaction.ID.String()),
			zap.String("external_id", externalID),
			zap.Error(err),
		)
		return "", fmt.Errorf("dispatch: attach external id: %w", err)
	}

	s.correlations.Bind(ctx, externalID, interaction.ID)
	return externalID, nil
}

func (s *Service) newInteraction(kind domain.InteractionKind, leadID uuid.UUID, teamMemberID *uuid.UUID, body *string) *domain.Interaction {
	now := time.Now().UTC()
	return &domain.Interaction{
		ID:           uuid.New(),
		Kind:         kind,
		Direction:    domain.DirectionOutbound,
		LeadID:       leadID,
		TeamMemberID: teamMemberID,
		Status:       domain.StatusQueued,
		Body:         body,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *Service) appendEvent(ctx context.Context, interactionID uuid.UUID, status domain.InteractionStatus, source, detail string) {
	if s.eventLog == nil {
		return
	}
	event := domain.InteractionEvent{
		InteractionID: interactionID,
		Status:        status,
		Source:        source,
		Detail:        detail,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.eventLog.Append(ctx, event); err != nil {
		s.logger.Warn("event log append failed", zap.String("interaction_id", interactionID.String()), zap.Error(err))
	}
}

func (s *Service) publishEvent(ctx context.Context, interaction *domain.Interaction, externalID string) {
	if s.events == nil {
		return
	}
	event := queue.InteractionEvent{
		InteractionID: interaction.ID,
		LeadID:        interaction.LeadID,
		Kind:          interaction.Kind,
		Direction:     interaction.Direction,
		Status:        interaction.Status,
		ExternalID:    externalID,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("interaction_id", interaction.ID.String()), zap.Error(err))
	}
}

func dialTwiML(callerID, number string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><Response><Dial callerId="%s"><Number>%s</Number></Dial></Response>`, callerID, number)
}
