package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acme/lead-outreach/internal/repository"
	dashboardsvc "github.com/acme/lead-outreach/internal/service/dashboard"
	dispatchsvc "github.com/acme/lead-outreach/internal/service/dispatch"
	ingestsvc "github.com/acme/lead-outreach/internal/service/ingest"
	leadsvc "github.com/acme/lead-outreach/internal/service/lead"
	teamsvc "github.com/acme/lead-outreach/internal/service/team"
	"github.com/acme/lead-outreach/internal/telephony"
	"github.com/acme/lead-outreach/pkg/logger"
)

// Services bundles everything the HTTP layer delegates to.
type Services struct {
	Dispatch     *dispatchsvc.Service
	Ingest       *ingestsvc.Service
	Leads        *leadsvc.Service
	Team         *teamsvc.Service
	Dashboard    *dashboardsvc.Service
	Provider     telephony.Provider
	Interactions repository.InteractionRepository
	EventLog     repository.InteractionEventLog
}

// HealthFunc pings the infrastructure and reports failing components.
type HealthFunc func(ctx context.Context) map[string]string

// HandlerSet bundles all HTTP handlers.
type HandlerSet struct {
	logger *logger.Logger
	svc    Services
	health HealthFunc
}

// NewHandlerSet creates a new handler bundle.
func NewHandlerSet(lg *logger.Logger, svc Services, health HealthFunc) *HandlerSet {
	return &HandlerSet{logger: lg, svc: svc, health: health}
}

// Register wires all routes onto the fiber app.
func (h *HandlerSet) Register(app *fiber.App) {
	app.Get("/healthz", h.healthz)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	leads := v1.Group("/leads")
	leads.Get("/", h.listLeads)
	leads.Post("/", h.createLead)
	leads.Get("/:id", h.getLead)
	leads.Put("/:id", h.updateLead)
	leads.Delete("/:id", h.deleteLead)

	members := v1.Group("/team-members")
	members.Get("/", h.listTeamMembers)
	members.Post("/", h.createTeamMember)
	members.Get("/:id", h.getTeamMember)
	members.Delete("/:id", h.deleteTeamMember)

	v1.Post("/calls", h.dispatchCall)
	v1.Post("/messages", h.dispatchMessage)

	interactions := v1.Group("/interactions")
	interactions.Get("/:id", h.getInteraction)
	interactions.Get("/:id/events", h.interactionEvents)

	v1.Get("/dashboard/stats", h.dashboardStats)
	v1.Get("/phone-numbers", h.listPhoneNumbers)

	webhooks := app.Group("/webhooks")
	webhooks.Post("/calls/status", h.callStatus)
	webhooks.Post("/messages/status", h.messageStatus)
	webhooks.Post("/messages/inbound", h.inboundMessage)
}

// ErrorHandler provides centralized error responses.
func (h *HandlerSet) ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	if fiberErr, ok := err.(*fiber.Error); ok {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code == fiber.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}

	return ctx.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

func (h *HandlerSet) healthz(ctx *fiber.Ctx) error {
	errs := map[string]string{}
	if h.health != nil {
		healthCtx, cancel := context.WithTimeout(ctx.Context(), 2*time.Second)
		defer cancel()
		errs = h.health(healthCtx)
	}

	status := fiber.StatusOK
	if len(errs) > 0 {
		status = fiber.StatusServiceUnavailable
	}

	return ctx.Status(status).JSON(fiber.Map{"status": "ok", "errors": errs})
}
