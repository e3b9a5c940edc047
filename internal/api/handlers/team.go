package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/acme/lead-outreach/internal/domain"
	teamsvc "github.com/acme/lead-outreach/internal/service/team"
)

type teamMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type teamMemberResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type listTeamMembersResponse struct {
	TeamMembers []teamMemberResponse `json:"team_members"`
}

func (h *HandlerSet) listTeamMembers(ctx *fiber.Ctx) error {
	members, err := h.svc.Team.List(ctx.Context(), ctx.QueryInt("limit"))
	if err != nil {
		return translateError(err)
	}

	resp := listTeamMembersResponse{TeamMembers: make([]teamMemberResponse, 0, len(members))}
	for _, member := range members {
		resp.TeamMembers = append(resp.TeamMembers, toTeamMemberResponse(member))
	}
	return ctx.Status(http.StatusOK).JSON(resp)
}

func (h *HandlerSet) createTeamMember(ctx *fiber.Ctx) error {
	var req teamMemberRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	member, err := h.svc.Team.Create(ctx.Context(), teamsvc.CreateInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  req.Role,
	})
	if err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusCreated).JSON(toTeamMemberResponse(member))
}

func (h *HandlerSet) getTeamMember(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid team member id")
	}

	member, err := h.svc.Team.Get(ctx.Context(), id)
	if err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusOK).JSON(toTeamMemberResponse(member))
}

func (h *HandlerSet) deleteTeamMember(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid team member id")
	}

	if err := h.svc.Team.Delete(ctx.Context(), id); err != nil {
		return translateError(err)
	}

	return ctx.SendStatus(http.StatusNoContent)
}

func toTeamMemberResponse(member *domain.TeamMember) teamMemberResponse {
	return teamMemberResponse{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		Phone:     member.Phone,
		Role:      member.Role,
		CreatedAt: member.CreatedAt,
	}
}
