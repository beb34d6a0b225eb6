package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/reservalab/internal/booking/application"
	"github.com/davicafu/reservalab/internal/booking/domain"
	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
	sharedHTTP "github.com/davicafu/reservalab/internal/shared/infra/http"
	"github.com/davicafu/reservalab/pkg/utils"
)

// BookingHandler encapsula los endpoints HTTP relacionados con reservas
type BookingHandler struct {
	service *application.BookingService
}

func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// ---------------- Handlers ----------------

// CreateBooking endpoint POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	identity, err := sharedHTTP.IdentityFromHeaders(c)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		EventID         string `json:"eventId" binding:"required"`
		NumberOfTickets int    `json:"numberOfTickets" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		utils.SendBadRequest(c, "invalid event id")
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), identity, eventID, req.NumberOfTickets)
	if err != nil {
		var seatsErr *domain.InsufficientSeatsError
		switch {
		case errors.Is(err, domain.ErrInvalidBooking):
			utils.SendBadRequest(c, err.Error())
		case errors.Is(err, eventDomain.ErrEventNotFound):
			utils.SendNotFound(c, "event not found")
		case errors.Is(err, eventDomain.ErrEventInactive), errors.Is(err, eventDomain.ErrEventPast):
			utils.SendBadRequest(c, err.Error())
		case errors.As(err, &seatsErr):
			utils.SendBadRequest(c, seatsErr.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusCreated, booking)
}

// ListMyBookings endpoint GET /bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	identity, err := sharedHTTP.IdentityFromHeaders(c)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	bookings, err := h.service.ListMyBookings(c.Request.Context(), identity.ID)
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, bookings)
}

// ListEventBookings endpoint GET /events/:id/bookings (solo el organizador)
func (h *BookingHandler) ListEventBookings(c *gin.Context) {
	identity, err := sharedHTTP.IdentityFromHeaders(c)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid event id")
		return
	}

	bookings, stats, err := h.service.ListEventBookings(c.Request.Context(), identity, eventID)
	if err != nil {
		switch {
		case errors.Is(err, eventDomain.ErrEventNotFound):
			utils.SendNotFound(c, "event not found")
		case errors.Is(err, eventDomain.ErrNotOrganizer):
			utils.SendForbidden(c, "only the event organizer can view its bookings")
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{
		"bookings": bookings,
		"stats":    stats,
	})
}

// CancelBooking endpoint PUT /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	identity, err := sharedHTTP.IdentityFromHeaders(c)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid booking id")
		return
	}

	booking, err := h.service.CancelBooking(c.Request.Context(), identity, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookingNotFound):
			utils.SendNotFound(c, "booking not found")
		case errors.Is(err, domain.ErrNotBookingOwner):
			utils.SendForbidden(c, "you can only cancel your own bookings")
		case errors.Is(err, domain.ErrAlreadyCancelled):
			utils.SendBadRequest(c, "booking is already cancelled")
		case errors.Is(err, domain.ErrInvalidBooking):
			utils.SendBadRequest(c, err.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusOK, booking)
}
