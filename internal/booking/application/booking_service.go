package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/reservalab/internal/booking/domain"
	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
	"github.com/davicafu/reservalab/internal/jobs"
	"github.com/davicafu/reservalab/internal/notify"
	sharedDomain "github.com/davicafu/reservalab/internal/shared/domain"
	sharedCache "github.com/davicafu/reservalab/internal/shared/infra/platform/cache"
)

// BookingService define los casos de uso del ledger de asientos: crear y
// cancelar reservas contra el aforo compartido de un evento, y los listados
// de solo lectura.
type BookingService struct {
	repo   domain.BookingRepository
	events eventDomain.EventRepository
	cache  sharedCache.Cache
	queue  jobs.Enqueuer
	log    *zap.Logger
}

// NewBookingService constructor
func NewBookingService(repo domain.BookingRepository, events eventDomain.EventRepository, cache sharedCache.Cache, queue jobs.Enqueuer, log *zap.Logger) *BookingService {
	return &BookingService{
		repo:   repo,
		events: events,
		cache:  cache,
		queue:  queue,
		log:    log,
	}
}

// invalidateEventCache expulsa el evento cacheado tras una mutación de
// asientos comprometida: la siguiente lectura verá el aforo real desde la BD.
func (s *BookingService) invalidateEventCache(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, eventDomain.CacheKeyByID(eventID)); err != nil {
		s.log.Warn("⚠️ No se pudo invalidar la cache del evento",
			zap.String("event_id", eventID.String()),
			zap.Error(err),
		)
	}
}

// CreateBooking reserva entradas para un evento. La transacción del
// repositorio garantiza que la inserción de la reserva y el decremento de
// asientos se aplican juntos o no se aplican; el job de confirmación se
// encola solo después de que la transacción haya comprometido, nunca antes y
// nunca si abortó.
func (s *BookingService) CreateBooking(ctx context.Context, customer sharedDomain.Identity, eventID uuid.UUID, tickets int) (*domain.Booking, error) {
	if eventID == uuid.Nil || tickets == 0 {
		return nil, domain.ErrInvalidBooking
	}
	if !domain.ValidTicketCount(tickets) {
		return nil, domain.ErrInvalidBooking
	}

	booking, err := s.repo.Reserve(ctx, domain.Reservation{
		EventID:  eventID,
		Customer: customer,
		Tickets:  tickets,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx, eventID)

	s.log.Info("🎟️ Reserva confirmada",
		zap.String("booking_id", booking.ID.String()),
		zap.String("event_id", eventID.String()),
		zap.Int("tickets", tickets),
	)

	s.queue.Enqueue(jobs.KindBookingConfirmation, notify.BookingConfirmation{
		BookingID:       booking.ID,
		CustomerName:    booking.CustomerName,
		CustomerEmail:   booking.CustomerEmail,
		EventTitle:      booking.EventTitle,
		NumberOfTickets: booking.NumberOfTickets,
		TotalAmount:     booking.TotalAmount,
		BookingDate:     booking.BookingDate,
	})

	return booking, nil
}

// CancelBooking cancela una reserva propia y devuelve sus entradas al evento.
// A diferencia de la creación, la cancelación no encola ninguna notificación.
func (s *BookingService) CancelBooking(ctx context.Context, requester sharedDomain.Identity, bookingID uuid.UUID) (*domain.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, domain.ErrInvalidBooking
	}

	booking, err := s.repo.Cancel(ctx, bookingID, requester.ID)
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx, booking.EventID)

	s.log.Info("↩️ Reserva cancelada",
		zap.String("booking_id", booking.ID.String()),
		zap.String("event_id", booking.EventID.String()),
		zap.Int("tickets", booking.NumberOfTickets),
	)

	return booking, nil
}

// ListMyBookings devuelve las reservas del cliente, las más recientes primero.
func (s *BookingService) ListMyBookings(ctx context.Context, customerID uuid.UUID) ([]*domain.Booking, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// ListEventBookings devuelve las reservas de un evento junto a sus
// estadísticas agregadas. Solo el organizador del evento puede consultarlas.
func (s *BookingService) ListEventBookings(ctx context.Context, requester sharedDomain.Identity, eventID uuid.UUID) ([]*domain.Booking, domain.BookingStats, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, domain.BookingStats{}, err
	}
	if event.OrganizerID != requester.ID {
		return nil, domain.BookingStats{}, eventDomain.ErrNotOrganizer
	}

	bookings, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, domain.BookingStats{}, err
	}

	return bookings, domain.ComputeStats(bookings), nil
}
