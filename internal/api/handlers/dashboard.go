package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/acme/lead-outreach/internal/domain"
)

type leadStatusCountResponse struct {
	Status domain.LeadStatus `json:"status"`
	Count  int64             `json:"count"`
}

type dashboardStatsResponse struct {
	TotalLeads          int64                     `json:"total_leads"`
	TotalCalls          int64                     `json:"total_calls"`
	TotalMessages       int64                     `json:"total_messages"`
	TotalTeamMembers    int64                     `json:"total_team_members"`
	LeadsByStatus       []leadStatusCountResponse `json:"leads_by_status"`
	AvgCallDurationSecs int64                     `json:"average_call_duration_seconds"`
	CallsToday          int64                     `json:"calls_today"`
	MessagesToday       int64                     `json:"messages_today"`
}

func (h *HandlerSet) dashboardStats(ctx *fiber.Ctx) error {
	stats, err := h.svc.Dashboard.Overview(ctx.Context())
	if err != nil {
		return translateError(err)
	}

	resp := dashboardStatsResponse{
		TotalLeads:          stats.TotalLeads,
		TotalCalls:          stats.TotalCalls,
		TotalMessages:       stats.TotalMessages,
		TotalTeamMembers:    stats.TotalTeamMembers,
		LeadsByStatus:       make([]leadStatusCountResponse, 0, len(stats.LeadsByStatus)),
		AvgCallDurationSecs: stats.AvgCallDurationSecs,
		CallsToday:          stats.CallsToday,
		MessagesToday:       stats.MessagesToday,
	}
	for _, bucket := range stats.LeadsByStatus {
		resp.LeadsByStatus = append(resp.LeadsByStatus, leadStatusCountResponse{
			Status: bucket.Status,
			Count:  bucket.Count,
		})
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}
