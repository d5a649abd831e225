package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"villabook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "Gateway-Signature"

type Handler struct {
	service       *Service
	webhooks      *WebhookService
	webhookSecret string
}

func NewHandler(service *Service, webhooks *WebhookService, webhookSecret string) *Handler {
	return &Handler{service: service, webhooks: webhooks, webhookSecret: webhookSecret}
}

// RegisterRoutes mounts the authenticated checkout endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/checkout", h.InitCheckout)
}

// RegisterWebhookRoutes mounts the public, signature-verified webhook
// endpoints.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/gateway/checkout", h.CheckoutWebhook)
	rg.POST("/webhooks/gateway/refunds", h.RefundWebhook)
}

func (h *Handler) InitCheckout(c *gin.Context) {
	var req InitCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	userID := c.GetInt64("user_id")

	out, err := h.service.InitCheckout(c.Request.Context(), req.BookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "booking not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "booking belongs to another user")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusConflict, "CONFLICT", "booking is not awaiting payment")
		default:
			response.Error(c, http.StatusBadGateway, "GATEWAY_ERROR", "failed to open checkout session")
		}
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) CheckoutWebhook(c *gin.Context) {
	evt, raw, ok := h.readEvent(c)
	if !ok {
		return
	}
	out, err := h.webhooks.HandleCheckoutCompleted(c.Request.Context(), evt, raw)
	h.writeWebhookResult(c, out, err)
}

func (h *Handler) RefundWebhook(c *gin.Context) {
	evt, raw, ok := h.readEvent(c)
	if !ok {
		return
	}
	out, err := h.webhooks.HandleRefundEvent(c.Request.Context(), evt, raw)
	h.writeWebhookResult(c, out, err)
}

// readEvent verifies the signature against the raw body before parsing
// anything. Invalid signatures never reach business logic.
func (h *Handler) readEvent(c *gin.Context) (Event, []byte, bool) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", "failed to read body")
		return Event{}, nil, false
	}
	if !VerifySignature(h.webhookSecret, raw, c.GetHeader(signatureHeader)) {
		response.Error(c, http.StatusBadRequest, "INVALID_SIGNATURE", "webhook signature verification failed")
		return Event{}, nil, false
	}
	var evt Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", "malformed event payload")
		return Event{}, nil, false
	}
	return evt, raw, true
}

func (h *Handler) writeWebhookResult(c *gin.Context, out *WebhookOutcome, err error) {
	if err != nil {
		if errors.Is(err, ErrBookingUnresolvable) {
			response.Error(c, http.StatusBadRequest, "UNRESOLVABLE", "event does not resolve to a booking")
			return
		}
		// Transient local failure: a retryable status lets the gateway's own
		// retry mechanism recover.
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to process event")
		return
	}
	response.Success(c, http.StatusOK, out)
}
