package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/reservalab/internal/event/domain"
	"github.com/davicafu/reservalab/internal/jobs"
	"github.com/davicafu/reservalab/internal/notify"
	sharedDomain "github.com/davicafu/reservalab/internal/shared/domain"
	sharedCache "github.com/davicafu/reservalab/internal/shared/infra/platform/cache"
)

// EventService define los casos de uso del ciclo de vida de un evento.
// No toca nunca available_seats: eso es territorio exclusivo del ledger.
type EventService struct {
	repo     domain.EventRepository
	bookings domain.BookingLookup
	cache    sharedCache.Cache
	queue    jobs.Enqueuer
	log      *zap.Logger
}

// NewEventService constructor
func NewEventService(repo domain.EventRepository, bookings domain.BookingLookup, cache sharedCache.Cache, queue jobs.Enqueuer, log *zap.Logger) *EventService {
	return &EventService{
		repo:     repo,
		bookings: bookings,
		cache:    cache,
		queue:    queue,
		log:      log,
	}
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}

		select {
		case <-time.After(delay):
			// espera antes del siguiente intento
		case <-ctx.Done():
			return ctx.Err() // contexto cancelado
		}
	}
	return err
}

// CreateEventInput agrupa los campos requeridos para publicar un evento.
type CreateEventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	TotalSeats  int
	Price       float64
}

// CreateEvent publica un evento nuevo con todos los asientos disponibles.
func (s *EventService) CreateEvent(ctx context.Context, organizer sharedDomain.Identity, in CreateEventInput) (*domain.Event, error) {
	now := time.Now().UTC()
	event := &domain.Event{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Date:           in.Date,
		Location:       strings.TrimSpace(in.Location),
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats, // se inicializa igual al aforo total
		Price:          in.Price,
		OrganizerID:    organizer.ID,
		Status:         domain.EventActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := event.Validate(now); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	if s.cache != nil {
		go func(e *domain.Event) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = s.cache.Set(ctxCache, domain.CacheKeyByID(e.ID), e, 60)
		}(event)
	}

	return event, nil
}

// GetEvent obtiene un evento (primero intenta desde cache).
func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	// 1. Intentar cache
	if s.cache != nil {
		var e domain.Event
		if ok, _ := s.cache.Get(ctx, domain.CacheKeyByID(id), &e); ok {
			return &e, nil
		}
	}

	// 2. Ir al repo con reintentos
	var event *domain.Event
	err := retry(ctx, 3, 100*time.Millisecond, func() error {
		var err error
		event, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. Actualizar cache en background sin bloquear la respuesta
	if s.cache != nil {
		go func(e *domain.Event) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			if err := s.cache.Set(ctxCache, domain.CacheKeyByID(e.ID), e, 60); err != nil {
				s.log.Warn("⚠️ Cache update failed for event", zap.String("event_id", e.ID.String()), zap.Error(err))
			}
		}(event)
	}

	return event, nil
}

// ListEvents devuelve los eventos aplicando filtros.
func (s *EventService) ListEvents(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	return s.repo.List(ctx, f)
}

// UpdateEventInput es el parche de un evento: solo campos descriptivos.
// OrganizerID, TotalSeats y AvailableSeats no forman parte del parche a
// propósito: cualquier valor que llegue por la API se descarta antes de
// construir este struct.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Price       *float64
	Status      *domain.EventStatus
}

// UpdateEvent aplica el parche campo a campo, comparando cada valor entrante
// con el persistido. Si algo cambió de verdad, persiste y encola exactamente
// un job 'event-update-notification' con los nombres de los campos cambiados
// y los clientes con reserva confirmada. Un parche idéntico al estado actual
// no encola nada.
func (s *EventService) UpdateEvent(ctx context.Context, requester sharedDomain.Identity, id uuid.UUID, in UpdateEventInput) (*domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != requester.ID {
		return nil, domain.ErrNotOrganizer
	}

	var updatedFields []string

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if len(title) < 3 || len(title) > 100 {
			return nil, domain.ErrInvalidEvent
		}
		if title != event.Title {
			event.Title = title
			updatedFields = append(updatedFields, "title")
		}
	}
	if in.Description != nil {
		if len(*in.Description) < 10 || len(*in.Description) > 1000 {
			return nil, domain.ErrInvalidEvent
		}
		if *in.Description != event.Description {
			event.Description = *in.Description
			updatedFields = append(updatedFields, "description")
		}
	}
	if in.Date != nil && !in.Date.Equal(event.Date) {
		if !in.Date.After(time.Now()) {
			return nil, domain.ErrInvalidEvent
		}
		event.Date = *in.Date
		updatedFields = append(updatedFields, "date")
	}
	if in.Location != nil {
		location := strings.TrimSpace(*in.Location)
		if location == "" {
			return nil, domain.ErrInvalidEvent
		}
		if location != event.Location {
			event.Location = location
			updatedFields = append(updatedFields, "location")
		}
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, domain.ErrInvalidEvent
		}
		if *in.Price != event.Price {
			event.Price = *in.Price
			updatedFields = append(updatedFields, "price")
		}
	}
	if in.Status != nil {
		if *in.Status != domain.EventActive && *in.Status != domain.EventCancelled {
			return nil, domain.ErrInvalidEvent
		}
		if *in.Status != event.Status {
			event.Status = *in.Status
			updatedFields = append(updatedFields, "status")
		}
	}

	if len(updatedFields) == 0 {
		return event, nil
	}

	event.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}

	if s.cache != nil {
		go func(e *domain.Event) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = s.cache.Set(ctxCache, domain.CacheKeyByID(e.ID), e, 60)
		}(event)
	}

	s.notifyUpdate(ctx, event, updatedFields)

	return event, nil
}

// notifyUpdate encola una única notificación de cambios si el evento tiene
// clientes con reserva confirmada.
func (s *EventService) notifyUpdate(ctx context.Context, event *domain.Event, updatedFields []string) {
	customers, err := s.bookings.ConfirmedCustomersByEvent(ctx, event.ID)
	if err != nil {
		s.log.Warn("⚠️ No se pudieron obtener los clientes a notificar",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
		return
	}
	if len(customers) == 0 {
		return
	}

	recipients := make([]notify.Recipient, len(customers))
	for i, c := range customers {
		recipients[i] = notify.Recipient{Name: c.Name, Email: c.Email}
	}

	s.queue.Enqueue(jobs.KindEventUpdate, notify.EventUpdate{
		EventID:       event.ID,
		EventTitle:    event.Title,
		UpdatedFields: updatedFields,
		Customers:     recipients,
	})
}

// DeleteEvent elimina un evento sin reservas confirmadas. Si las tiene, la
// operación se rechaza: el organizador debe cancelar el evento en su lugar.
func (s *EventService) DeleteEvent(ctx context.Context, requester sharedDomain.Identity, id uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.OrganizerID != requester.ID {
		return domain.ErrNotOrganizer
	}

	confirmed, err := s.bookings.CountConfirmedByEvent(ctx, id)
	if err != nil {
		return err
	}
	if confirmed > 0 {
		return &domain.EventHasBookingsError{Confirmed: confirmed}
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		go func(eid uuid.UUID) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = s.cache.Delete(ctxCache, domain.CacheKeyByID(eid))
		}(id)
	}

	return nil
}
