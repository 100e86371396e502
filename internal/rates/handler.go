package rates

import (
	"errors"
	"net/http"

	"bookingpt/internal/api"
	"bookingpt/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// SetRate godoc
// @Summary      Set hourly rate
// @Description  Sets the authenticated provider's hourly rate used for booking price snapshots.
// @Tags         rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      SetRateRequest  true  "Rate"
// @Success      200   {object}  ProviderRate
// @Failure      400   {object}  api.ErrorResponse
// @Failure      500   {object}  api.ErrorResponse
// @Router       /provider/rate [put]
func (h *Handler) SetRate(c *gin.Context) {
	providerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "hourly_rate_cents must be a positive integer"})
		return
	}

	rate, err := h.repo.SetRate(c.Request.Context(), providerID, req.HourlyRateCents)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to save rate"})
		return
	}

	c.JSON(http.StatusOK, rate)
}

// GetRate godoc
// @Summary      Get hourly rate
// @Tags         rates
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  ProviderRate
// @Failure      404  {object}  api.ErrorResponse
// @Router       /provider/rate [get]
func (h *Handler) GetRate(c *gin.Context) {
	providerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	rate, err := h.repo.GetRate(c.Request.Context(), providerID)
	if err != nil {
		if errors.Is(err, ErrRateNotSet) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Rate not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch rate"})
		return
	}

	c.JSON(http.StatusOK, rate)
}
