package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookingpt/internal/api"
	"bookingpt/internal/auth"
	"bookingpt/internal/timeutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func parseInterval(startStr, endStr string) (timeutil.Interval, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return timeutil.Interval{}, err
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return timeutil.Interval{}, err
	}
	return timeutil.Interval{Start: start, End: end}, nil
}

func respondSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timeutil.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "end_time must be after start_time"})
	case errors.Is(err, ErrSlotNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Slot not found"})
	case errors.Is(err, ErrNotSlotOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only manage your own slots"})
	case errors.Is(err, ErrSlotConflict):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Slot overlaps an existing slot"})
	case errors.Is(err, ErrSlotBooked):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Slot is reserved by a booking"})
	case errors.Is(err, ErrSlotStateMismatch):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Slot is not in the expected status"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal error"})
	}
}

// CreateSlot godoc
// @Summary      Publish availability slot
// @Description  Creates a non-overlapping availability window for the authenticated provider.
// @Tags         slots
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      CreateSlotRequest  true  "Slot interval (RFC3339)"
// @Success      201   {object}  Slot
// @Failure      400   {object}  api.ErrorResponse
// @Failure      409   {object}  api.ErrorResponse
// @Router       /provider/slots [post]
func (h *Handler) CreateSlot(c *gin.Context) {
	providerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "start_time and end_time are required"})
		return
	}

	interval, err := parseInterval(req.StartTime, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "times must be RFC3339"})
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), providerID, interval)
	if err != nil {
		respondSlotError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// UpdateSlot godoc
// @Summary      Update slot interval
// @Tags         slots
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slotID  path      int                true  "Slot ID"
// @Param        body    body      UpdateSlotRequest  true  "New interval (RFC3339)"
// @Success      200     {object}  Slot
// @Failure      400     {object}  api.ErrorResponse
// @Failure      404     {object}  api.ErrorResponse
// @Failure      409     {object}  api.ErrorResponse
// @Router       /provider/slots/{slotID} [put]
func (h *Handler) UpdateSlot(c *gin.Context) {
	providerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	var req UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "start_time and end_time are required"})
		return
	}

	interval, err := parseInterval(req.StartTime, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "times must be RFC3339"})
		return
	}

	slot, err := h.service.UpdateSlot(c.Request.Context(), providerID, slotID, interval)
	if err != nil {
		respondSlotError(c, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}

// DeleteSlot godoc
// @Summary      Delete slot
// @Description  Deletes an availability slot. Only slots not held by a booking can be deleted.
// @Tags         slots
// @Security     BearerAuth
// @Produce      json
// @Param        slotID  path      int  true  "Slot ID"
// @Success      200     {object}  api.MessageResponse
// @Failure      404     {object}  api.ErrorResponse
// @Failure      409     {object}  api.ErrorResponse
// @Router       /provider/slots/{slotID} [delete]
func (h *Handler) DeleteSlot(c *gin.Context) {
	providerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	if err := h.service.DeleteSlot(c.Request.Context(), providerID, slotID); err != nil {
		respondSlotError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Slot deleted"})
}

// WithdrawSlot godoc
// @Summary      Withdraw slot
// @Description  Marks an available slot unavailable until explicitly reopened.
// @Tags         slots
// @Security     BearerAuth
// @Produce      json
// @Param        slotID  path      int  true  "Slot ID"
// @Success      200     {object}  api.MessageResponse
// @Failure      404     {object}  api.ErrorResponse
// @Failure      409     {object}  api.ErrorResponse
// @Router       /provider/slots/{slotID}/withdraw [post]
func (h *Handler) WithdrawSlot(c *gin.Context) {
	providerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	if err := h.service.WithdrawSlot(c.Request.Context(), providerID, slotID); err != nil {
		respondSlotError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Slot withdrawn"})
}

// ReopenSlot godoc
// @Summary      Reopen withdrawn slot
// @Tags         slots
// @Security     BearerAuth
// @Produce      json
// @Param        slotID  path      int  true  "Slot ID"
// @Success      200     {object}  api.MessageResponse
// @Failure      404     {object}  api.ErrorResponse
// @Failure      409     {object}  api.ErrorResponse
// @Router       /provider/slots/{slotID}/reopen [post]
func (h *Handler) ReopenSlot(c *gin.Context) {
	providerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	if err := h.service.ReopenSlot(c.Request.Context(), providerID, slotID); err != nil {
		respondSlotError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Slot reopened"})
}

// ListSlots godoc
// @Summary      List provider slots
// @Description  Returns a provider's slots ordered by start time, optionally date-bounded.
// @Tags         slots
// @Security     BearerAuth
// @Produce      json
// @Param        providerID  path      int     true   "Provider ID"
// @Param        from        query     string  false  "Lower bound (RFC3339)"
// @Param        to          query     string  false  "Upper bound (RFC3339)"
// @Success      200         {array}   Slot
// @Failure      400         {object}  api.ErrorResponse
// @Router       /providers/{providerID}/slots [get]
func (h *Handler) ListSlots(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid provider ID"})
		return
	}

	var from, to *time.Time
	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid from format, use RFC3339"})
			return
		}
		from = &t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid to format, use RFC3339"})
			return
		}
		to = &t
	}

	slots, err := h.service.ListSlots(c.Request.Context(), providerID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch slots"})
		return
	}

	c.JSON(http.StatusOK, slots)
}
