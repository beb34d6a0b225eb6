package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventCancelled EventStatus = "cancelled"
)

// Event representa un evento publicado por un organizador, con un aforo
// finito. AvailableSeats solo se muta dentro de una transacción del ledger
// de asientos, nunca por asignación directa.
type Event struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Date           time.Time   `json:"date"`
	Location       string      `json:"location"`
	TotalSeats     int         `json:"total_seats"`
	AvailableSeats int         `json:"available_seats"`
	Price          float64     `json:"price"`
	OrganizerID    uuid.UUID   `json:"organizer_id"`
	Status         EventStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (e *Event) PartitionKey() string {
	return e.ID.String()
}

// SoldOut indica si el evento ya no tiene asientos disponibles.
func (e *Event) SoldOut() bool {
	return e.AvailableSeats == 0
}

// HasAvailableSeats comprueba si quedan al menos 'requested' asientos.
func (e *Event) HasAvailableSeats(requested int) bool {
	return e.AvailableSeats >= requested
}

// IsPast indica si la fecha del evento ya pasó respecto a 'now'.
func (e *Event) IsPast(now time.Time) bool {
	return e.Date.Before(now)
}

// Validate aplica las reglas estructurales de un evento nuevo.
func (e *Event) Validate(now time.Time) error {
	title := strings.TrimSpace(e.Title)
	if len(title) < 3 || len(title) > 100 {
		return ErrInvalidEvent
	}
	if len(e.Description) < 10 || len(e.Description) > 1000 {
		return ErrInvalidEvent
	}
	if strings.TrimSpace(e.Location) == "" {
		return ErrInvalidEvent
	}
	if e.TotalSeats < 1 || e.TotalSeats > 100000 {
		return ErrInvalidEvent
	}
	if e.Price < 0 {
		return ErrInvalidEvent
	}
	if !e.Date.After(now) {
		return ErrInvalidEvent
	}
	return nil
}
