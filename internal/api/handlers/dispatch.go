package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	dispatchsvc "github.com/acme/lead-outreach/internal/service/dispatch"
)

type dispatchCallRequest struct {
	LeadID       string `json:"lead_id"`
	TeamMemberID string `json:"team_member_id"`
	FromNumber   string `json:"from_number"`
}

type dispatchMessageRequest struct {
	LeadID       string `json:"lead_id"`
	TeamMemberID string `json:"team_member_id"`
	FromNumber   string `json:"from_number"`
	Body         string `json:"body"`
}

type dispatchResponse struct {
	InteractionID uuid.UUID `json:"interaction_id"`
	ExternalID    string    `json:"external_id"`
}

func (h *HandlerSet) dispatchCall(ctx *fiber.Ctx) error {
	var req dispatchCallRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid lead id")
	}
	memberID, err := uuid.Parse(req.TeamMemberID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid team member id")
	}

	result, err := h.svc.Dispatch.DispatchCall(ctx.Context(), dispatchsvc.CallInput{
		LeadID:       leadID,
		TeamMemberID: memberID,
		FromNumber:   req.FromNumber,
	})
	if err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusAccepted).JSON(dispatchResponse{
		InteractionID: result.InteractionID,
		ExternalID:    result.ExternalID,
	})
}

func (h *HandlerSet) dispatchMessage(ctx *fiber.Ctx) error {
	var req dispatchMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid lead id")
	}

	input := dispatchsvc.MessageInput{
		LeadID:     leadID,
		FromNumber: req.FromNumber,
		Body:       req.Body,
	}
	if req.TeamMemberID != "" {
		memberID, err := uuid.Parse(req.TeamMemberID)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid team member id")
		}
		input.TeamMemberID = &memberID
	}

	result, err := h.svc.Dispatch.DispatchMessage(ctx.Context(), input)
	if err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusAccepted).JSON(dispatchResponse{
		InteractionID: result.InteractionID,
		ExternalID:    result.ExternalID,
	})
}
