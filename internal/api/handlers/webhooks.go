package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acme/lead-outreach/internal/domain"
	ingestsvc "github.com/acme/lead-outreach/internal/service/ingest"
)

// emptyTwiML is the acknowledgment Twilio expects for inbound messages. It is
// returned unconditionally: signalling an internal error here would make the
// provider's retry behavior unpredictable and risk duplicate deliveries.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

type callStatusForm struct {
	CallSid      string `form:"CallSid"`
	CallStatus   string `form:"CallStatus"`
	CallDuration string `form:"CallDuration"`
	RecordingURL string `form:"RecordingUrl"`
}

type messageStatusForm struct {
	MessageSid    string `form:"MessageSid"`
	MessageStatus string `form:"MessageStatus"`
}

type inboundMessageForm struct {
	MessageSid string `form:"MessageSid"`
	From       string `form:"From"`
	Body       string `form:"Body"`
}

func (h *HandlerSet) callStatus(ctx *fiber.Ctx) error {
	var form callStatusForm
	if err := ctx.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid callback payload")
	}
	if form.CallSid == "" || form.CallStatus == "" {
		return fiber.NewError(http.StatusBadRequest, "missing call sid or status")
	}

	update := domain.StatusUpdate{
		ExternalID: form.CallSid,
		Status:     domain.InteractionStatus(form.CallStatus),
	}
	if form.CallDuration != "" {
		seconds, err := strconv.Atoi(form.CallDuration)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid call duration")
		}
		update.DurationSeconds = &seconds
	}
	if form.RecordingURL != "" {
		update.RecordingURL = &form.RecordingURL
	}

	if err := h.svc.Ingest.IngestStatus(ctx.Context(), update); err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *HandlerSet) messageStatus(ctx *fiber.Ctx) error {
	var form messageStatusForm
	if err := ctx.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid callback payload")
	}
	if form.MessageSid == "" || form.MessageStatus == "" {
		return fiber.NewError(http.StatusBadRequest, "missing message sid or status")
	}

	update := domain.StatusUpdate{
		ExternalID: form.MessageSid,
		Status:     domain.InteractionStatus(form.MessageStatus),
	}

	if err := h.svc.Ingest.IngestStatus(ctx.Context(), update); err != nil {
		return translateError(err)
	}

	return ctx.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *HandlerSet) inboundMessage(ctx *fiber.Ctx) error {
	var form inboundMessageForm
	if err := ctx.BodyParser(&form); err == nil {
		if ingestErr := h.svc.Ingest.IngestInbound(ctx.Context(), ingestInput(form)); ingestErr != nil {
			h.logger.Error("inbound message ingest failed",
				zap.String("external_id", form.MessageSid),
				zap.Error(ingestErr),
			)
		}
	} else {
		h.logger.Warn("inbound webhook payload unreadable", zap.Error(err))
	}

	ctx.Set(fiber.HeaderContentType, "text/xml")
	return ctx.Status(http.StatusOK).SendString(emptyTwiML)
}

func ingestInput(form inboundMessageForm) ingestsvc.InboundMessage {
	return ingestsvc.InboundMessage{
		ExternalID: form.MessageSid,
		From:       form.From,
		Body:       form.Body,
	}
}
