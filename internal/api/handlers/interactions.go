package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
)

type interactionResponse struct {
	ID              uuid.UUID                `json:"id"`
	Kind            domain.InteractionKind   `json:"kind"`
	Direction       domain.Direction         `json:"direction"`
	LeadID          uuid.UUID                `json:"lead_id"`
	TeamMemberID    *uuid.UUID               `json:"team_member_id,omitempty"`
	ExternalID      *string                  `json:"external_id,omitempty"`
	Status          domain.InteractionStatus `json:"status"`
	DurationSeconds *int                     `json:"duration_seconds,omitempty"`
	RecordingURL    *string                  `json:"recording_url,omitempty"`
	Body            *string                  `json:"body,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

type interactionEventResponse struct {
	Status          domain.InteractionStatus `json:"status"`
	Source          string                   `json:"source"`
	DurationSeconds *int                     `json:"duration_seconds,omitempty"`
	RecordingURL    *string                  `json:"recording_url,omitempty"`
	Detail          string                   `json:"detail,omitempty"`
	OccurredAt      time.Time                `json:"occurred_at"`
}

type listEventsResponse struct {
	Events []interactionEventResponse `json:"events"`
}

func (h *HandlerSet) getInteraction(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid interaction id")
	}

	interaction, err := h.svc.Interactions.Get(ctx.Context(), id)
	if err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusOK).JSON(toInteractionResponse(interaction))
}

func (h *HandlerSet) interactionEvents(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid interaction id")
	}

	resp := listEventsResponse{Events: []interactionEventResponse{}}
	if h.svc.EventLog == nil {
		return ctx.Status(http.StatusOK).JSON(resp)
	}

	events, err := h.svc.EventLog.ListByInteraction(ctx.Context(), id, ctx.QueryInt("limit"))
	if err != nil {
		return translateError(err)
	}

	for _, event := range events {
		resp.Events = append(resp.Events, interactionEventResponse{
			Status:          event.Status,
			Source:          event.Source,
			DurationSeconds: event.DurationSeconds,
			RecordingURL:    event.RecordingURL,
			Detail:          event.Detail,
			OccurredAt:      event.OccurredAt,
		})
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}

func toInteractionResponse(interaction *domain.Interaction) interactionResponse {
	return interactionResponse{
		ID:              interaction.ID,
		Kind:            interaction.Kind,
		Direction:       interaction.Direction,
		LeadID:          interaction.LeadID,
		TeamMemberID:    interaction.TeamMemberID,
		ExternalID:      interaction.ExternalID,
		Status:          interaction.Status,
		DurationSeconds: interaction.DurationSeconds,
		RecordingURL:    interaction.RecordingURL,
		Body:            interaction.Body,
		CreatedAt:       interaction.CreatedAt,
		UpdatedAt:       interaction.UpdatedAt,
	}
}
