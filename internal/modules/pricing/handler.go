package pricing

import (
	"errors"
	"net/http"
	"strconv"

	"villabook/internal/pkg/response"
	"villabook/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public quote endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/properties/:id/quote", h.GetQuote)
}

// RegisterAdminRoutes mounts the period management endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/periods", h.UpsertPeriod)
	rg.DELETE("/periods/:id", h.DeletePeriod)
}

func (h *Handler) GetQuote(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || propertyID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid property id")
		return
	}
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	start, err := ParseDate(req.StartDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "start_date must be YYYY-MM-DD")
		return
	}
	end, err := ParseDate(req.EndDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "end_date must be YYYY-MM-DD")
		return
	}

	q, err := h.service.Quote(c.Request.Context(), propertyID, start, end, req.Guests)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoPeriod):
			response.Error(c, http.StatusConflict, "NO_PERIOD", "requested dates are not covered by any period")
		case errors.Is(err, ErrClosed):
			response.Error(c, http.StatusConflict, "CLOSED", "requested dates include a closed period")
		case errors.Is(err, ErrMinNights):
			response.Error(c, http.StatusConflict, "MIN_NIGHTS", "stay is shorter than the period minimum")
		case errors.Is(err, ErrMaxGuests):
			response.Error(c, http.StatusConflict, "MAX_GUESTS", "party exceeds the period capacity")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid date range")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to compute quote")
		}
		return
	}
	response.Success(c, http.StatusOK, q)
}

func (h *Handler) UpsertPeriod(c *gin.Context) {
	var req UpsertPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid period payload", errs)
		return
	}

	p, err := h.service.UpsertPeriod(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPeriodOverlap):
			response.Error(c, http.StatusConflict, "PERIOD_OVERLAP", "period overlaps an existing period")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid period payload")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to save period")
		}
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) DeletePeriod(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid period id")
		return
	}
	if err := h.service.DeletePeriod(c.Request.Context(), id); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to delete period")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}
