package booking

import (
	"errors"
	"net/http"
	"strconv"

	"villabook/internal/modules/pricing"
	"villabook/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings/my", h.GetMyBookings)
	rg.GET("/bookings/:id", h.GetByID)
	rg.GET("/bookings/:id/cancellation-preview", h.PreviewCancellation)
	rg.POST("/bookings/:id/cancel", h.Cancel)
	rg.POST("/bookings/:id/refunds/:refund_id/retry", h.RetryRefund)
	rg.GET("/vouchers/my", h.GetMyVouchers)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{UserID: c.GetInt64("user_id"), Role: c.GetString("role")}
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid booking id")
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	b, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid booking request")
		case errors.Is(err, pricing.ErrNoPeriod):
			response.Error(c, http.StatusConflict, "NO_PERIOD", "requested dates are not covered by any period")
		case errors.Is(err, pricing.ErrClosed):
			response.Error(c, http.StatusConflict, "CLOSED", "requested dates include a closed period")
		case errors.Is(err, pricing.ErrMinNights):
			response.Error(c, http.StatusConflict, "MIN_NIGHTS", "stay is shorter than the period minimum")
		case errors.Is(err, pricing.ErrMaxGuests):
			response.Error(c, http.StatusConflict, "MAX_GUESTS", "party exceeds the period capacity")
		case errors.Is(err, pricing.ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid date range")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create booking")
		}
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) GetMyBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := h.service.GetMyBookings(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) GetMyVouchers(c *gin.Context) {
	rows, err := h.service.GetMyVouchers(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list vouchers")
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.GetByID(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) PreviewCancellation(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	preview, err := h.service.PreviewCancellation(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, preview)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), id, actorFrom(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if result.RetryAvailable {
		// Cancelled, but the refund submission needs a retry. 202 keeps the
		// partial success distinguishable from the clean path.
		response.Success(c, http.StatusAccepted, result)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) RetryRefund(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	refundID, err := uuid.Parse(c.Param("refund_id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid refund id")
		return
	}

	ref, err := h.service.RetryRefundSubmission(c.Request.Context(), id, refundID, actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ref)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "booking belongs to another user")
	case errors.Is(err, ErrAlreadyCancelled):
		response.Error(c, http.StatusConflict, "ALREADY_CANCELLED", "booking is already cancelled")
	case errors.Is(err, ErrRefundNotRetryable):
		response.Error(c, http.StatusConflict, "NOT_RETRYABLE", "refund is not in a retryable state")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "operation failed")
	}
}
