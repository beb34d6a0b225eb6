package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/reservalab/internal/shared/domain"
)

// ---------- Errores de dominio ----------
var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInvalidBooking   = errors.New("invalid booking request")
	ErrNotBookingOwner  = errors.New("not authorized to cancel this booking")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

// InsufficientSeatsError se devuelve cuando el evento no tiene asientos
// suficientes; Available es el número real de asientos que quedaban.
type InsufficientSeatsError struct {
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("Only %d seats available", e.Available)
}

// Reservation es la petición que entra al ledger de asientos.
type Reservation struct {
	EventID  uuid.UUID
	Customer sharedDomain.Identity
	Tickets  int
}

// ---------- Interfaces (Ports) ----------

// BookingRepository es el puerto persistente del ledger de asientos. Reserve
// y Cancel son transaccionales: la inserción/estado de la reserva y el ajuste
// de available_seats del evento se aplican juntos o no se aplican, incluso
// bajo peticiones concurrentes sobre el mismo evento.
type BookingRepository interface {
	// Reserve valida dentro de la transacción que el evento existe, está
	// activo, su fecha no ha pasado y le quedan asientos; inserta la reserva
	// confirmada y decrementa available_seats. Errores posibles:
	// event.ErrEventNotFound, event.ErrEventInactive, event.ErrEventPast,
	// *InsufficientSeatsError.
	Reserve(ctx context.Context, res Reservation) (*Booking, error)

	// Cancel marca la reserva como cancelada y devuelve sus entradas al
	// evento, en la misma transacción. Errores posibles: ErrBookingNotFound,
	// ErrNotBookingOwner, ErrAlreadyCancelled.
	Cancel(ctx context.Context, bookingID, customerID uuid.UUID) (*Booking, error)

	// Debe devolver ErrBookingNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// ListByCustomer devuelve las reservas del cliente, las más recientes primero.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Booking, error)

	// ListByEvent devuelve todas las reservas del evento, las más recientes primero.
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Booking, error)

	// CountConfirmedByEvent cuenta las reservas confirmadas de un evento.
	CountConfirmedByEvent(ctx context.Context, eventID uuid.UUID) (int, error)
}
