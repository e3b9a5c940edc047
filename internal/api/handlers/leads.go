package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
	leadsvc "github.com/acme/lead-outreach/internal/service/lead"
)

type leadRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	AssignedToID string `json:"assigned_to_id"`
}

type leadResponse struct {
	ID           uuid.UUID         `json:"id"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email,omitempty"`
	Company      string            `json:"company,omitempty"`
	Status       domain.LeadStatus `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	AssignedToID *uuid.UUID        `json:"assigned_to_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type leadActivityResponse struct {
	leadResponse
	Interactions []interactionResponse `json:"interactions"`
}

type listLeadsResponse struct {
	Leads []leadActivityResponse `json:"leads"`
}

func (h *HandlerSet) listLeads(ctx *fiber.Ctx) error {
	activities, err := h.svc.Leads.List(ctx.Context(), ctx.QueryInt("limit"))
	if err != nil {
		return translateError(err)
	}

	resp := listLeadsResponse{Leads: make([]leadActivityResponse, 0, len(activities))}
	for _, activity := range activities {
		resp.Leads = append(resp.Leads, toLeadActivityResponse(activity))
	}
	return ctx.Status(http.StatusOK).JSON(resp)
}

func (h *HandlerSet) createLead(ctx *fiber.Ctx) error {
	var req leadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	input := leadsvc.CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Company:   req.Company,
		Status:    domain.LeadStatus(req.Status),
		Notes:     req.Notes,
	}
	if req.AssignedToID != "" {
		id, err := uuid.Parse(req.AssignedToID)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid assigned_to_id")
		}
		input.AssignedToID = &id
	}

	lead, err := h.svc.Leads.Create(ctx.Context(), input)
	if err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusCreated).JSON(toLeadResponse(lead))
}

func (h *HandlerSet) getLead(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid lead id")
	}

	activity, err := h.svc.Leads.Get(ctx.Context(), id)
	if err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusOK).JSON(toLeadActivityResponse(activity))
}

func (h *HandlerSet) updateLead(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid lead id")
	}

	var req leadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	input := leadsvc.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Company:   req.Company,
		Status:    domain.LeadStatus(req.Status),
		Notes:     req.Notes,
	}
	if req.AssignedToID != "" {
		assignedID, err := uuid.Parse(req.AssignedToID)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid assigned_to_id")
		}
		input.AssignedToID = &assignedID
	}

	lead, err := h.svc.Leads.Update(ctx.Context(), id, input)
	if err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusOK).JSON(toLeadResponse(lead))
}

func (h *HandlerSet) deleteLead(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid lead id")
	}

	if err := h.svc.Leads.Delete(ctx.Context(), id); err != nil {
		return translateError(err)
	}

	return ctx.SendStatus(http.StatusNoContent)
}

func toLeadActivityResponse(activity *leadsvc.Activity) leadActivityResponse {
	resp := leadActivityResponse{
		leadResponse: toLeadResponse(activity.Lead),
		Interactions: make([]interactionResponse, 0, len(activity.Interactions)),
	}
	for _, interaction := range activity.Interactions {
		resp.Interactions = append(resp.Interactions, toInteractionResponse(interaction))
	}
	return resp
}

func toLeadResponse(lead *domain.Lead) leadResponse {
	return leadResponse{
		ID:           lead.ID,
		FirstName:    lead.FirstName,
		LastName:     lead.LastName,
		Phone:        lead.Phone,
		Email:        lead.Email,
		Company:      lead.Company,
		Status:       lead.Status,
		Notes:        lead.Notes,
		AssignedToID: lead.AssignedToID,
		CreatedAt:    lead.CreatedAt,
		UpdatedAt:    lead.UpdatedAt,
	}
}
