package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bookingpt/internal/api"
	"bookingpt/internal/auth"
	"bookingpt/internal/availability"
	"bookingpt/internal/policy"
	"bookingpt/internal/rates"
	"bookingpt/internal/timeutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

var knownStatuses = map[BookingStatus]bool{
	StatusPendingConfirmation: true,
	StatusConfirmed:           true,
	StatusCompleted:           true,
	StatusRejectedByPT:        true,
	StatusRejectedBySystem:    true,
	StatusCancelledByClient:   true,
	StatusCancelledByPT:       true,
}

func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, availability.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Slot not found"})
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
	case errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You are not allowed to perform this action"})
	case errors.Is(err, timeutil.ErrPastStartTime):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Cannot book a slot in the past"})
	case errors.Is(err, timeutil.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Slot has an invalid time range"})
	case errors.Is(err, ErrSlotNoLongerAvailable):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Slot is no longer available"})
	case errors.Is(err, ErrOverlappingActiveBooking):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You already have a booking in this time range"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Booking is not in a state that allows this action"})
	case errors.Is(err, policy.ErrCancellationWindowClosed):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Cancellation window has closed"})
	case errors.Is(err, policy.ErrSessionNotYetEnded):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Session has not ended yet"})
	case errors.Is(err, rates.ErrRateNotSet):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Provider has not configured a rate"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal error"})
	}
}

// BookSlot godoc
// @Summary      Book a slot
// @Description  Creates a pending booking against an available slot and reserves it.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        slotID  path      int  true  "Slot ID"
// @Success      201     {object}  Booking
// @Failure      400     {object}  api.ErrorResponse
// @Failure      404     {object}  api.ErrorResponse
// @Failure      409     {object}  api.ErrorResponse
// @Router       /slots/{slotID}/book [post]
func (h *Handler) BookSlot(c *gin.Context) {
	clientID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	booking, err := h.service.Create(c.Request.Context(), clientID, slotID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ConfirmBooking godoc
// @Summary      Confirm booking
// @Description  Provider accepts a pending booking; the slot stays reserved.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/confirm [post]
func (h *Handler) ConfirmBooking(c *gin.Context) {
	h.providerAction(c, h.service.Confirm)
}

// RejectBooking godoc
// @Summary      Reject booking
// @Description  Provider declines a pending booking; the slot returns to available.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/reject [post]
func (h *Handler) RejectBooking(c *gin.Context) {
	h.providerAction(c, h.service.Reject)
}

// CompleteBooking godoc
// @Summary      Complete booking
// @Description  Provider marks a confirmed booking completed once the session has ended.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/complete [post]
func (h *Handler) CompleteBooking(c *gin.Context) {
	h.providerAction(c, h.service.Complete)
}

func (h *Handler) providerAction(c *gin.Context, action func(ctx context.Context, providerID, bookingID int) (*Booking, error)) {
	providerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	booking, err := action(c.Request.Context(), providerID, bookingID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking godoc
// @Summary      Cancel booking
// @Description  Cancels a booking. Clients may cancel pending bookings at any time and confirmed bookings up to the cancellation cutoff; providers may cancel confirmed bookings.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	role, _ := auth.GetRole(c)

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	var booking *Booking
	if role == auth.RoleProvider {
		booking, err = h.service.CancelByProvider(c.Request.Context(), userID, bookingID)
	} else {
		booking, err = h.service.CancelByClient(c.Request.Context(), userID, bookingID)
	}
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetBooking godoc
// @Summary      Get booking
// @Description  Returns one booking; only its client or provider may view it.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	booking, err := h.service.GetByID(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListMyBookings godoc
// @Summary      List my bookings
// @Description  Returns the authenticated user's bookings, as client or provider depending on role, optionally filtered by status.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Status filter"
// @Success      200     {array}   Booking
// @Failure      400     {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	role, _ := auth.GetRole(c)

	var status *BookingStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := BookingStatus(statusStr)
		if !knownStatuses[s] {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown status filter"})
			return
		}
		status = &s
	}

	var (
		bookings []Booking
		err      error
	)
	if role == auth.RoleProvider {
		bookings, err = h.service.ListByProvider(c.Request.Context(), userID, status)
	} else {
		bookings, err = h.service.ListByClient(c.Request.Context(), userID, status)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}
