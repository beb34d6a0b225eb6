package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/davicafu/reservalab/internal/booking/domain"
	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
)

// InMemoryStore simula la persistencia compartida de eventos y reservas,
// igual que harían las tablas de una única base de datos. El mutex hace de
// frontera transaccional: Reserve y Cancel son atómicos también bajo
// goroutines concurrentes. Los repositorios se obtienen con EventRepo() y
// BookingRepo(), dos vistas sobre el mismo estado.
type InMemoryStore struct {
	mu       sync.Mutex
	Events   map[uuid.UUID]*eventDomain.Event
	Bookings map[uuid.UUID]*bookingDomain.Booking
	order    []uuid.UUID // orden de inserción de reservas

	// Now permite fijar el reloj en los tests; si es nil se usa time.Now.
	Now func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Events:   make(map[uuid.UUID]*eventDomain.Event),
		Bookings: make(map[uuid.UUID]*bookingDomain.Booking),
	}
}

// EventRepo devuelve la vista EventRepository (+ BookingLookup) del store.
func (s *InMemoryStore) EventRepo() *EventRepoMock {
	return &EventRepoMock{s: s}
}

// BookingRepo devuelve la vista BookingRepository del store.
func (s *InMemoryStore) BookingRepo() *BookingRepoMock {
	return &BookingRepoMock{s: s}
}

func (s *InMemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// SeatCount devuelve los asientos disponibles actuales de un evento (test helper).
func (s *InMemoryStore) SeatCount(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.Events[id]; ok {
		return e.AvailableSeats
	}
	return -1
}

// ---------------- EventRepository ----------------

type EventRepoMock struct {
	s *InMemoryStore
}

var (
	_ eventDomain.EventRepository = (*EventRepoMock)(nil)
	_ eventDomain.BookingLookup   = (*EventRepoMock)(nil)
)

func (r *EventRepoMock) Create(ctx context.Context, e *eventDomain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *e
	r.s.Events[e.ID] = &cp
	return nil
}

func (r *EventRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*eventDomain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.Events[id]
	if !ok {
		return nil, eventDomain.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

// Update persiste solo los campos descriptivos: el aforo y el organizador
// guardados nunca se pisan, igual que el UPDATE real.
func (r *EventRepoMock) Update(ctx context.Context, e *eventDomain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.Events[e.ID]
	if !ok {
		return eventDomain.ErrEventNotFound
	}
	stored.Title = e.Title
	stored.Description = e.Description
	stored.Date = e.Date
	stored.Location = e.Location
	stored.Price = e.Price
	stored.Status = e.Status
	stored.UpdatedAt = e.UpdatedAt
	return nil
}

func (r *EventRepoMock) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Events[id]; !ok {
		return eventDomain.ErrEventNotFound
	}
	delete(r.s.Events, id)
	return nil
}

func (r *EventRepoMock) List(ctx context.Context, f eventDomain.EventFilter) ([]*eventDomain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*eventDomain.Event
	for _, e := range r.s.Events {
		if f.Status != nil && e.Status != *f.Status {
			continue
		}
		if f.DateFrom != nil && e.Date.Before(*f.DateFrom) {
			continue
		}
		if f.Search != nil {
			needle := strings.ToLower(*f.Search)
			haystack := strings.ToLower(e.Title + " " + e.Description + " " + e.Location)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		cp := *e
		out = append(out, &cp)
	}

	desc := f.Sort.Desc
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})

	return out, nil
}

func (r *EventRepoMock) CountConfirmedByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, b := range r.s.Bookings {
		if b.EventID == eventID && b.Status == bookingDomain.BookingConfirmed {
			count++
		}
	}
	return count, nil
}

func (r *EventRepoMock) ConfirmedCustomersByEvent(ctx context.Context, eventID uuid.UUID) ([]eventDomain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []eventDomain.Customer
	for _, id := range r.s.order {
		b := r.s.Bookings[id]
		if b != nil && b.EventID == eventID && b.Status == bookingDomain.BookingConfirmed {
			out = append(out, eventDomain.Customer{Name: b.CustomerName, Email: b.CustomerEmail})
		}
	}
	return out, nil
}

// ---------------- BookingRepository ----------------

type BookingRepoMock struct {
	s *InMemoryStore
}

var _ bookingDomain.BookingRepository = (*BookingRepoMock)(nil)

func (r *BookingRepoMock) Reserve(ctx context.Context, res bookingDomain.Reservation) (*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event, ok := r.s.Events[res.EventID]
	if !ok {
		return nil, eventDomain.ErrEventNotFound
	}
	if event.Status != eventDomain.EventActive {
		return nil, eventDomain.ErrEventInactive
	}
	if event.IsPast(r.s.now()) {
		return nil, eventDomain.ErrEventPast
	}
	if !event.HasAvailableSeats(res.Tickets) {
		return nil, &bookingDomain.InsufficientSeatsError{Available: event.AvailableSeats}
	}

	now := r.s.now()
	booking := &bookingDomain.Booking{
		ID:              uuid.New(),
		EventID:         event.ID,
		EventTitle:      event.Title,
		CustomerID:      res.Customer.ID,
		CustomerName:    res.Customer.Name,
		CustomerEmail:   res.Customer.Email,
		NumberOfTickets: res.Tickets,
		TotalAmount:     event.Price * float64(res.Tickets),
		Status:          bookingDomain.BookingConfirmed,
		BookingDate:     now,
		CreatedAt:       now,
	}

	r.s.Bookings[booking.ID] = booking
	r.s.order = append(r.s.order, booking.ID)
	event.AvailableSeats -= res.Tickets

	cp := *booking
	return &cp, nil
}

func (r *BookingRepoMock) Cancel(ctx context.Context, bookingID, customerID uuid.UUID) (*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.s.Bookings[bookingID]
	if !ok {
		return nil, bookingDomain.ErrBookingNotFound
	}
	if booking.CustomerID != customerID {
		return nil, bookingDomain.ErrNotBookingOwner
	}
	if booking.Status == bookingDomain.BookingCancelled {
		return nil, bookingDomain.ErrAlreadyCancelled
	}

	event, ok := r.s.Events[booking.EventID]
	if !ok {
		return nil, fmt.Errorf("event %s for booking %s is missing", booking.EventID, bookingID)
	}

	booking.Status = bookingDomain.BookingCancelled
	event.AvailableSeats += booking.NumberOfTickets

	cp := *booking
	return &cp, nil
}

func (r *BookingRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.Bookings[id]
	if !ok {
		return nil, bookingDomain.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *BookingRepoMock) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*bookingDomain.Booking
	// Recorremos en orden inverso de inserción: las más recientes primero.
	for i := len(r.s.order) - 1; i >= 0; i-- {
		b := r.s.Bookings[r.s.order[i]]
		if b != nil && b.CustomerID == customerID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *BookingRepoMock) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*bookingDomain.Booking
	for i := len(r.s.order) - 1; i >= 0; i-- {
		b := r.s.Bookings[r.s.order[i]]
		if b != nil && b.EventID == eventID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *BookingRepoMock) CountConfirmedByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	return r.s.EventRepo().CountConfirmedByEvent(ctx, eventID)
}
