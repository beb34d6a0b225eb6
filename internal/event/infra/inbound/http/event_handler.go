package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/reservalab/internal/event/application"
	"github.com/davicafu/reservalab/internal/event/domain"
	sharedHTTP "github.com/davicafu/reservalab/internal/shared/infra/http"
	"github.com/davicafu/reservalab/pkg/utils"
)

// EventHandler encapsula los endpoints HTTP relacionados con eventos
type EventHandler struct {
	service *application.EventService
}

func NewEventHandler(service *application.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// ---------------- Handlers ----------------

// CreateEvent endpoint POST /events (solo organizadores)
func (h *EventHandler) CreateEvent(c *gin.Context) {
	identity, err := sharedHTTP.IdentityFromHeaders(c)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	if !identity.IsOrganizer() {
		utils.SendForbidden(c, "only organizers can create events")
		return
	}

	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description" binding:"required"`
		Date        string  `json:"date" binding:"required"` // RFC3339
		Location    string  `json:"location" binding:"required"`
		TotalSeats  int     `json:"totalSeats" binding:"required"`
		Price       float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		utils.SendBadRequest(c, "invalid date format, use RFC3339")
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), identity, application.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
		TotalSeats:  req.TotalSeats,
		Price:       req.Price,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEvent) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusCreated, event)
}

// GetEvent endpoint GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid event id")
		return
	}

	event, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			utils.SendNotFound(c, "event not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, event)
}

// ListEvents endpoint GET /events con filtros por query params
func (h *EventHandler) ListEvents(c *gin.Context) {
	var filter domain.EventFilter

	if status := c.Query("status"); status != "" {
		s := domain.EventStatus(status)
		if s != domain.EventActive && s != domain.EventCancelled {
			utils.SendBadRequest(c, "invalid status filter")
			return
		}
		filter.Status = &s
	}
	if dateFrom := c.Query("date_from"); dateFrom != "" {
		from, err := time.Parse(time.RFC3339, dateFrom)
		if err != nil {
			utils.SendBadRequest(c, "invalid date_from format, use RFC3339")
			return
		}
		filter.DateFrom = &from
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if c.Query("sort_desc") == "true" {
		filter.Sort.Desc = true
	}

	events, err := h.service.ListEvents(c.Request.Context(), filter)
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, events)
}

// UpdateEvent endpoint PUT /events/:id (solo el organizador propietario)
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	identity, err := sharedHTTP.IdentityFromHeaders(c)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid event id")
		return
	}

	var req struct {
		Title       *string  `json:"title,omitempty"`
		Description *string  `json:"description,omitempty"`
		Date        *string  `json:"date,omitempty"` // RFC3339
		Location    *string  `json:"location,omitempty"`
		Price       *float64 `json:"price,omitempty"`
		Status      *string  `json:"status,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	in := application.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Price:       req.Price,
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			utils.SendBadRequest(c, "invalid date format, use RFC3339")
			return
		}
		in.Date = &date
	}
	if req.Status != nil {
		status := domain.EventStatus(*req.Status)
		in.Status = &status
	}

	event, err := h.service.UpdateEvent(c.Request.Context(), identity, id, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEventNotFound):
			utils.SendNotFound(c, "event not found")
		case errors.Is(err, domain.ErrNotOrganizer):
			utils.SendForbidden(c, "only the event organizer can update it")
		case errors.Is(err, domain.ErrInvalidEvent):
			utils.SendBadRequest(c, err.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusOK, event)
}

// DeleteEvent endpoint DELETE /events/:id (solo el organizador propietario)
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	identity, err := sharedHTTP.IdentityFromHeaders(c)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid event id")
		return
	}

	if err := h.service.DeleteEvent(c.Request.Context(), identity, id); err != nil {
		var hasBookings *domain.EventHasBookingsError
		switch {
		case errors.Is(err, domain.ErrEventNotFound):
			utils.SendNotFound(c, "event not found")
		case errors.Is(err, domain.ErrNotOrganizer):
			utils.SendForbidden(c, "only the event organizer can delete it")
		case errors.As(err, &hasBookings):
			utils.SendBadRequest(c, hasBookings.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	c.Status(http.StatusNoContent)
}
