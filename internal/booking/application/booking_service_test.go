package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/davicafu/reservalab/internal/booking/domain"
	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
	"github.com/davicafu/reservalab/internal/jobs"
	"github.com/davicafu/reservalab/internal/notify"
	sharedDomain "github.com/davicafu/reservalab/internal/shared/domain"
	"github.com/davicafu/reservalab/tests/mocks"
)

func newCustomer(name, email string) sharedDomain.Identity {
	return sharedDomain.Identity{
		ID:    uuid.New(),
		Name:  name,
		Email: email,
		Role:  sharedDomain.RoleCustomer,
	}
}

func seedEvent(store *mocks.InMemoryStore, seats int, price float64) *eventDomain.Event {
	event := &eventDomain.Event{
		ID:             uuid.New(),
		Title:          "Concierto de primavera",
		Description:    "Una noche de música en directo",
		Date:           time.Now().Add(48 * time.Hour),
		Location:       "Madrid",
		TotalSeats:     seats,
		AvailableSeats: seats,
		Price:          price,
		OrganizerID:    uuid.New(),
		Status:         eventDomain.EventActive,
		CreatedAt:      time.Now().UTC(),
	}
	_ = store.EventRepo().Create(context.Background(), event)
	return event
}

func newService(store *mocks.InMemoryStore, queue *mocks.RecorderQueue) *BookingService {
	return newServiceWithCache(store, queue, mocks.NewDummyCache())
}

func newServiceWithCache(store *mocks.InMemoryStore, queue *mocks.RecorderQueue, cache *mocks.DummyCache) *BookingService {
	return NewBookingService(store.BookingRepo(), store.EventRepo(), cache, queue, zap.NewNop())
}

func TestCreateBooking_Success(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")

	booking, err := service.CreateBooking(context.Background(), ana, event.ID, 4)
	assert.NoError(t, err)
	assert.NotNil(t, booking)
	assert.Equal(t, domain.BookingConfirmed, booking.Status)
	assert.Equal(t, 4, booking.NumberOfTickets)
	assert.Equal(t, 80.0, booking.TotalAmount)
	assert.Equal(t, "Concierto de primavera", booking.EventTitle)
	assert.Equal(t, "Ana", booking.CustomerName)

	// El decremento de asientos y la reserva se aplicaron juntos.
	assert.Equal(t, 6, store.SeatCount(event.ID))

	// ✅ Un único job de confirmación, con los datos capturados en la reserva.
	enqueued := queue.Enqueued()
	assert.Len(t, enqueued, 1)
	assert.Equal(t, jobs.KindBookingConfirmation, enqueued[0].Kind)
	payload, ok := enqueued[0].Payload.(notify.BookingConfirmation)
	assert.True(t, ok)
	assert.Equal(t, booking.ID, payload.BookingID)
	assert.Equal(t, "ana@example.com", payload.CustomerEmail)
	assert.Equal(t, 80.0, payload.TotalAmount)
}

func TestCreateBooking_InvalidRequest(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")

	tests := []struct {
		name    string
		eventID uuid.UUID
		tickets int
	}{
		{name: "sin evento", eventID: uuid.Nil, tickets: 2},
		{name: "cero entradas", eventID: event.ID, tickets: 0},
		{name: "entradas negativas", eventID: event.ID, tickets: -1},
		{name: "más de diez entradas", eventID: event.ID, tickets: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateBooking(context.Background(), ana, tt.eventID, tt.tickets)
			assert.ErrorIs(t, err, domain.ErrInvalidBooking)
		})
	}

	// Ninguna petición inválida deja rastro: ni asientos ni jobs.
	assert.Equal(t, 10, store.SeatCount(event.ID))
	assert.Empty(t, queue.Enqueued())
}

func TestCreateBooking_EventNotFound(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	_, err := service.CreateBooking(context.Background(), newCustomer("Ana", "ana@example.com"), uuid.New(), 2)
	assert.ErrorIs(t, err, eventDomain.ErrEventNotFound)
	assert.Empty(t, queue.Enqueued())
}

func TestCreateBooking_EventInactive(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	event.Status = eventDomain.EventCancelled
	_ = store.EventRepo().Update(context.Background(), event)

	_, err := service.CreateBooking(context.Background(), newCustomer("Ana", "ana@example.com"), event.ID, 2)
	assert.ErrorIs(t, err, eventDomain.ErrEventInactive)
	assert.Equal(t, 10, store.SeatCount(event.ID))
}

func TestCreateBooking_EventPast(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	// Avanzamos el reloj del store más allá de la fecha del evento.
	store.Now = func() time.Time { return event.Date.Add(time.Hour) }

	_, err := service.CreateBooking(context.Background(), newCustomer("Ana", "ana@example.com"), event.ID, 2)
	assert.ErrorIs(t, err, eventDomain.ErrEventPast)
	assert.Empty(t, queue.Enqueued())
}

func TestCreateBooking_InsufficientSeats(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")

	_, err := service.CreateBooking(context.Background(), ana, event.ID, 4)
	assert.NoError(t, err)

	// Solo quedan 6: pedir 7 falla informando del número real que quedaba.
	_, err = service.CreateBooking(context.Background(), ana, event.ID, 7)
	var seatsErr *domain.InsufficientSeatsError
	assert.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, 6, seatsErr.Available)
	assert.Equal(t, "Only 6 seats available", err.Error())

	// La transacción abortada no toca los asientos ni encola ningún job.
	assert.Equal(t, 6, store.SeatCount(event.ID))
	assert.Len(t, queue.OfKind(jobs.KindBookingConfirmation), 1)
}

func TestCreateBooking_TotalAmountIsSnapshot(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")

	booking, err := service.CreateBooking(context.Background(), ana, event.ID, 3)
	assert.NoError(t, err)
	assert.Equal(t, 60.0, booking.TotalAmount)

	// Subir el precio del evento no recalcula reservas existentes.
	event.Price = 99
	_ = store.EventRepo().Update(context.Background(), event)

	got, err := store.BookingRepo().GetByID(context.Background(), booking.ID)
	assert.NoError(t, err)
	assert.Equal(t, 60.0, got.TotalAmount)
}

func TestCancelBooking_RestoresSeats(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")

	booking, err := service.CreateBooking(context.Background(), ana, event.ID, 4)
	assert.NoError(t, err)
	assert.Equal(t, 6, store.SeatCount(event.ID))

	cancelled, err := service.CancelBooking(context.Background(), ana, booking.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, cancelled.Status)
	assert.Equal(t, 10, store.SeatCount(event.ID))

	// La cancelación no encola ninguna notificación.
	assert.Len(t, queue.Enqueued(), 1) // solo la confirmación original
}

func TestCancelBooking_TwiceRejected(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")

	booking, _ := service.CreateBooking(context.Background(), ana, event.ID, 4)

	_, err := service.CancelBooking(context.Background(), ana, booking.ID)
	assert.NoError(t, err)

	_, err = service.CancelBooking(context.Background(), ana, booking.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	// El segundo intento no vuelve a sumar asientos.
	assert.Equal(t, 10, store.SeatCount(event.ID))
}

func TestCancelBooking_Forbidden(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")
	juan := newCustomer("Juan", "juan@example.com")

	booking, _ := service.CreateBooking(context.Background(), ana, event.ID, 4)

	_, err := service.CancelBooking(context.Background(), juan, booking.ID)
	assert.ErrorIs(t, err, domain.ErrNotBookingOwner)
	assert.Equal(t, 6, store.SeatCount(event.ID))
}

func TestCancelBooking_NotFound(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	_, err := service.CancelBooking(context.Background(), newCustomer("Ana", "ana@example.com"), uuid.New())
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestListMyBookings_MostRecentFirst(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")

	first, _ := service.CreateBooking(context.Background(), ana, event.ID, 1)
	second, _ := service.CreateBooking(context.Background(), ana, event.ID, 2)

	bookings, err := service.ListMyBookings(context.Background(), ana.ID)
	assert.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Equal(t, second.ID, bookings[0].ID)
	assert.Equal(t, first.ID, bookings[1].ID)
}

func TestListEventBookings_StatsAndAuthorization(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 20, 10)
	ana := newCustomer("Ana", "ana@example.com")
	juan := newCustomer("Juan", "juan@example.com")

	_, _ = service.CreateBooking(context.Background(), ana, event.ID, 4)
	cancelled, _ := service.CreateBooking(context.Background(), juan, event.ID, 5)
	_, _ = service.CancelBooking(context.Background(), juan, cancelled.ID)

	organizer := sharedDomain.Identity{ID: event.OrganizerID, Role: sharedDomain.RoleOrganizer}
	bookings, stats, err := service.ListEventBookings(context.Background(), organizer, event.ID)
	assert.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Equal(t, 2, stats.TotalBookings)
	assert.Equal(t, 1, stats.ConfirmedBookings)
	assert.Equal(t, 1, stats.CancelledBookings)
	assert.Equal(t, 4, stats.TotalTicketsSold)
	assert.Equal(t, 40.0, stats.TotalRevenue)

	// Cualquier otro solicitante recibe Forbidden.
	_, _, err = service.ListEventBookings(context.Background(), juan, event.ID)
	assert.ErrorIs(t, err, eventDomain.ErrNotOrganizer)
}

// Escenario completo: aforo 10, precio 20.
func TestBookingScenario(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")

	// Reservar 4 → quedan 6, importe 80, un job de confirmación.
	booking, err := service.CreateBooking(context.Background(), ana, event.ID, 4)
	assert.NoError(t, err)
	assert.Equal(t, 80.0, booking.TotalAmount)
	assert.Equal(t, 6, store.SeatCount(event.ID))
	assert.Len(t, queue.OfKind(jobs.KindBookingConfirmation), 1)

	// Reservar 7 más → falla con el recuento real y no toca nada.
	_, err = service.CreateBooking(context.Background(), ana, event.ID, 7)
	assert.EqualError(t, err, "Only 6 seats available")
	assert.Equal(t, 6, store.SeatCount(event.ID))

	// Cancelar la primera → vuelven los 10, sin jobs nuevos.
	_, err = service.CancelBooking(context.Background(), ana, booking.ID)
	assert.NoError(t, err)
	assert.Equal(t, 10, store.SeatCount(event.ID))
	assert.Len(t, queue.Enqueued(), 1)
}

func TestCreateBooking_InvalidatesEventCache(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	cache := mocks.NewDummyCache()
	service := newServiceWithCache(store, queue, cache)

	event := seedEvent(store, 10, 20)
	key := eventDomain.CacheKeyByID(event.ID)
	cache.SetForTest(key, event)

	_, err := service.CreateBooking(context.Background(), newCustomer("Ana", "ana@example.com"), event.ID, 4)
	assert.NoError(t, err)

	// La reserva comprometida expulsa el evento cacheado: la siguiente
	// lectura no puede servir el aforo anterior a la reserva.
	var cached eventDomain.Event
	ok, _ := cache.Get(context.Background(), key, &cached)
	assert.False(t, ok)
}

func TestCancelBooking_InvalidatesEventCache(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	cache := mocks.NewDummyCache()
	service := newServiceWithCache(store, queue, cache)

	event := seedEvent(store, 10, 20)
	ana := newCustomer("Ana", "ana@example.com")

	booking, err := service.CreateBooking(context.Background(), ana, event.ID, 4)
	assert.NoError(t, err)

	// Simula una lectura posterior que volvió a poblar la cache.
	key := eventDomain.CacheKeyByID(event.ID)
	cache.SetForTest(key, event)

	_, err = service.CancelBooking(context.Background(), ana, booking.ID)
	assert.NoError(t, err)

	var cached eventDomain.Event
	ok, _ := cache.Get(context.Background(), key, &cached)
	assert.False(t, ok)
}

func TestCreateBooking_FailedReserveKeepsCache(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	cache := mocks.NewDummyCache()
	service := newServiceWithCache(store, queue, cache)

	event := seedEvent(store, 3, 20)
	key := eventDomain.CacheKeyByID(event.ID)
	cache.SetForTest(key, event)

	// Una transacción abortada no muta asientos: no hay nada que invalidar.
	_, err := service.CreateBooking(context.Background(), newCustomer("Ana", "ana@example.com"), event.ID, 5)
	var seatsErr *domain.InsufficientSeatsError
	assert.ErrorAs(t, err, &seatsErr)

	var cached eventDomain.Event
	ok, _ := cache.Get(context.Background(), key, &cached)
	assert.True(t, ok)
}

// Bajo concurrencia, la suma de entradas confirmadas nunca supera el aforo.
func TestCreateBooking_NoOversellUnderConcurrency(t *testing.T) {
	store := mocks.NewInMemoryStore()
	queue := &mocks.RecorderQueue{}
	service := newService(store, queue)

	event := seedEvent(store, 10, 5)

	const attempts = 25
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			customer := newCustomer("Cliente", "cliente@example.com")
			// Entre 1 y 3 entradas por intento: en total piden mucho más de 10.
			_, _ = service.CreateBooking(context.Background(), customer, event.ID, i%3+1)
		}(i)
	}
	wg.Wait()

	bookings, err := store.BookingRepo().ListByEvent(context.Background(), event.ID)
	assert.NoError(t, err)

	sold := 0
	for _, b := range bookings {
		if b.IsConfirmed() {
			sold += b.NumberOfTickets
		}
	}
	assert.LessOrEqual(t, sold, event.TotalSeats)
	assert.Equal(t, event.TotalSeats-sold, store.SeatCount(event.ID))
	assert.Len(t, queue.OfKind(jobs.KindBookingConfirmation), len(bookings))
}
