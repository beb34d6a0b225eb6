package integration

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	_ "modernc.org/sqlite"

	bookingDomain "github.com/davicafu/reservalab/internal/booking/domain"
	bookingSqlite "github.com/davicafu/reservalab/internal/booking/infra/outbound/db/sqlite"
	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
	eventSqlite "github.com/davicafu/reservalab/internal/event/infra/outbound/db/sqlite"
	sharedDomain "github.com/davicafu/reservalab/internal/shared/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err)
	// Una sola conexión: con más, cada una vería su propia BD en memoria.
	db.SetMaxOpenConns(1)

	assert.NoError(t, eventSqlite.InitSQLite(db))
	assert.NoError(t, bookingSqlite.InitSQLite(db))
	return db
}

func insertEvent(t *testing.T, repo *eventSqlite.EventRepoSQLite, seats int, price float64) *eventDomain.Event {
	now := time.Now().UTC()
	event := &eventDomain.Event{
		ID:             uuid.New(),
		Title:          "Feria del libro",
		Description:    "Casetas, firmas y presentaciones",
		Date:           now.Add(72 * time.Hour),
		Location:       "Madrid",
		TotalSeats:     seats,
		AvailableSeats: seats,
		Price:          price,
		OrganizerID:    uuid.New(),
		Status:         eventDomain.EventActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	assert.NoError(t, repo.Create(context.Background(), event))
	return event
}

func customer(name, email string) sharedDomain.Identity {
	return sharedDomain.Identity{ID: uuid.New(), Name: name, Email: email, Role: sharedDomain.RoleCustomer}
}

func TestEventSQLiteIntegration_CreateGetUpdateDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := eventSqlite.NewEventRepoSQLite(db)
	event := insertEvent(t, repo, 100, 15)

	// Obtener
	got, err := repo.GetByID(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, event.Title, got.Title)
	assert.Equal(t, 100, got.AvailableSeats)

	// Actualizar solo campos descriptivos
	got.Title = "Feria del libro antiguo"
	got.Price = 18
	got.AvailableSeats = 1 // no debe persistirse
	got.UpdatedAt = time.Now().UTC()
	assert.NoError(t, repo.Update(context.Background(), got))

	updated, err := repo.GetByID(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Feria del libro antiguo", updated.Title)
	assert.Equal(t, 18.0, updated.Price)
	assert.Equal(t, 100, updated.AvailableSeats)

	// Listar con búsqueda
	search := "antiguo"
	events, err := repo.List(context.Background(), eventDomain.EventFilter{Search: &search})
	assert.NoError(t, err)
	assert.Len(t, events, 1)

	// Eliminar
	assert.NoError(t, repo.DeleteByID(context.Background(), event.ID))
	_, err = repo.GetByID(context.Background(), event.ID)
	assert.ErrorIs(t, err, eventDomain.ErrEventNotFound)
}

func TestBookingSQLiteIntegration_ReserveAndCancel(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	eventRepo := eventSqlite.NewEventRepoSQLite(db)
	bookingRepo := bookingSqlite.NewBookingRepoSQLite(db)

	event := insertEvent(t, eventRepo, 10, 20)
	ana := customer("Ana", "ana@example.com")

	booking, err := bookingRepo.Reserve(context.Background(), bookingDomain.Reservation{
		EventID: event.ID, Customer: ana, Tickets: 4,
	})
	assert.NoError(t, err)
	assert.Equal(t, bookingDomain.BookingConfirmed, booking.Status)
	assert.Equal(t, 80.0, booking.TotalAmount)
	assert.Equal(t, "Feria del libro", booking.EventTitle)

	got, err := eventRepo.GetByID(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, 6, got.AvailableSeats)

	// Pedir más de lo que queda aborta sin tocar nada
	_, err = bookingRepo.Reserve(context.Background(), bookingDomain.Reservation{
		EventID: event.ID, Customer: ana, Tickets: 7,
	})
	var seatsErr *bookingDomain.InsufficientSeatsError
	assert.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, 6, seatsErr.Available)

	got, _ = eventRepo.GetByID(context.Background(), event.ID)
	assert.Equal(t, 6, got.AvailableSeats)
	count, err := bookingRepo.CountConfirmedByEvent(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	// Cancelar devuelve los asientos
	cancelled, err := bookingRepo.Cancel(context.Background(), booking.ID, ana.ID)
	assert.NoError(t, err)
	assert.Equal(t, bookingDomain.BookingCancelled, cancelled.Status)

	got, _ = eventRepo.GetByID(context.Background(), event.ID)
	assert.Equal(t, 10, got.AvailableSeats)

	// Cancelar dos veces se rechaza y no vuelve a sumar
	_, err = bookingRepo.Cancel(context.Background(), booking.ID, ana.ID)
	assert.ErrorIs(t, err, bookingDomain.ErrAlreadyCancelled)
	got, _ = eventRepo.GetByID(context.Background(), event.ID)
	assert.Equal(t, 10, got.AvailableSeats)
}

func TestBookingSQLiteIntegration_CancelGuards(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	eventRepo := eventSqlite.NewEventRepoSQLite(db)
	bookingRepo := bookingSqlite.NewBookingRepoSQLite(db)

	event := insertEvent(t, eventRepo, 10, 20)
	ana := customer("Ana", "ana@example.com")

	booking, err := bookingRepo.Reserve(context.Background(), bookingDomain.Reservation{
		EventID: event.ID, Customer: ana, Tickets: 2,
	})
	assert.NoError(t, err)

	// Otro cliente no puede cancelarla
	_, err = bookingRepo.Cancel(context.Background(), booking.ID, uuid.New())
	assert.ErrorIs(t, err, bookingDomain.ErrNotBookingOwner)

	// Reserva inexistente
	_, err = bookingRepo.Cancel(context.Background(), uuid.New(), ana.ID)
	assert.ErrorIs(t, err, bookingDomain.ErrBookingNotFound)
}

func TestBookingSQLiteIntegration_ConfirmedCustomers(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	eventRepo := eventSqlite.NewEventRepoSQLite(db)
	bookingRepo := bookingSqlite.NewBookingRepoSQLite(db)

	event := insertEvent(t, eventRepo, 20, 10)
	ana := customer("Ana", "ana@example.com")
	juan := customer("Juan", "juan@example.com")

	// Ana reserva dos veces: debe aparecer una sola vez en la lista.
	for i := 0; i < 2; i++ {
		_, err := bookingRepo.Reserve(context.Background(), bookingDomain.Reservation{
			EventID: event.ID, Customer: ana, Tickets: 1,
		})
		assert.NoError(t, err)
	}
	dropped, err := bookingRepo.Reserve(context.Background(), bookingDomain.Reservation{
		EventID: event.ID, Customer: juan, Tickets: 1,
	})
	assert.NoError(t, err)
	_, err = bookingRepo.Cancel(context.Background(), dropped.ID, juan.ID)
	assert.NoError(t, err)

	customers, err := bookingRepo.ConfirmedCustomersByEvent(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.Equal(t, "ana@example.com", customers[0].Email)

	bookings, err := bookingRepo.ListByCustomer(context.Background(), ana.ID)
	assert.NoError(t, err)
	assert.Len(t, bookings, 2)
}

// Reservas concurrentes sobre el mismo evento: el aforo nunca se sobrevende.
func TestBookingSQLiteIntegration_ConcurrentReserves(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	eventRepo := eventSqlite.NewEventRepoSQLite(db)
	bookingRepo := bookingSqlite.NewBookingRepoSQLite(db)

	event := insertEvent(t, eventRepo, 10, 5)

	const attempts = 15
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = bookingRepo.Reserve(context.Background(), bookingDomain.Reservation{
				EventID:  event.ID,
				Customer: customer("Cliente", "cliente@example.com"),
				Tickets:  i%2 + 1,
			})
		}(i)
	}
	wg.Wait()

	bookings, err := bookingRepo.ListByEvent(context.Background(), event.ID)
	assert.NoError(t, err)

	sold := 0
	for _, b := range bookings {
		sold += b.NumberOfTickets
	}
	assert.LessOrEqual(t, sold, event.TotalSeats)

	got, err := eventRepo.GetByID(context.Background(), event.ID)
	assert.NoError(t, err)
	assert.Equal(t, event.TotalSeats-sold, got.AvailableSeats)
}
