package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ---------- Errores de dominio ----------
var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
	ErrNotOrganizer  = errors.New("not authorized to manage this event")
	ErrEventInactive = errors.New("event is not active")
	ErrEventPast     = errors.New("cannot book tickets for past events")
)

// EventHasBookingsError impide borrar un evento con reservas confirmadas.
type EventHasBookingsError struct {
	Confirmed int
}

func (e *EventHasBookingsError) Error() string {
	return fmt.Sprintf("cannot delete event with %d active booking(s), cancel the event instead", e.Confirmed)
}

// ---------- Interfaces (Ports) ----------

// EventRepository define las operaciones persistentes para Event.
// Las mutaciones de AvailableSeats NO pasan por aquí: son exclusivas de la
// transacción del ledger en el contexto de booking.
type EventRepository interface {
	Create(ctx context.Context, e *Event) error

	// Debe devolver ErrEventNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)

	// Update persiste los campos descriptivos del evento. Nunca escribe
	// total_seats ni available_seats. Debe devolver ErrEventNotFound si no existe.
	Update(ctx context.Context, e *Event) error

	// Debe devolver ErrEventNotFound si no existe.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// List devuelve los eventos según el filtro, ordenados por fecha ascendente
	// por defecto.
	List(ctx context.Context, f EventFilter) ([]*Event, error)
}

// Customer es la proyección (nombre, email) de un cliente con reserva
// confirmada, usada para las notificaciones de cambios del evento.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingLookup es el puerto hacia el contexto de booking: consultas de solo
// lectura sobre reservas confirmadas de un evento.
type BookingLookup interface {
	CountConfirmedByEvent(ctx context.Context, eventID uuid.UUID) (int, error)
	ConfirmedCustomersByEvent(ctx context.Context, eventID uuid.UUID) ([]Customer, error)
}

// ---------- Tipos de filtrado / ordenamiento ----------

// Sort indica campo y dirección.
type Sort struct {
	Field string // ej. "date", "created_at", "title"
	Desc  bool
}

// EventFilter agrupa criterios de búsqueda que puede usar EventRepository.List.
type EventFilter struct {
	Status   *EventStatus // filtra por estado exacto
	DateFrom *time.Time   // eventos con fecha >= DateFrom
	Search   *string      // búsqueda en title/description/location (LIKE)

	Sort Sort
}

// ---------- Helpers comunes (cache keys, etc.) ----------

// CacheKeyByID forma una key consistente para cache usando ID.
func CacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("event:id:%s", id.String())
}
