package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/davicafu/reservalab/internal/booking/domain"
	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
)

type BookingRepoPostgres struct {
	db *sql.DB
}

func NewBookingRepoPostgres(db *sql.DB) *BookingRepoPostgres {
	return &BookingRepoPostgres{db: db}
}

var _ domain.BookingRepository = (*BookingRepoPostgres)(nil)
var _ eventDomain.BookingLookup = (*BookingRepoPostgres)(nil)

// ------------------ Métodos ------------------

// Reserve descuenta los asientos y crea la reserva en una única transacción.
// El SELECT ... FOR UPDATE bloquea la fila del evento: dos reservas
// concurrentes sobre el mismo evento se serializan y la segunda ve el aforo
// ya descontado por la primera.
func (r *BookingRepoPostgres) Reserve(ctx context.Context, res domain.Reservation) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var title, status string
	var date time.Time
	var available int
	var price float64
	err = tx.QueryRowContext(ctx,
		`SELECT title, status, date, available_seats, price FROM events WHERE id = $1 FOR UPDATE`,
		res.EventID,
	).Scan(&title, &status, &date, &available, &price)
	if err != nil {
		if err == sql.ErrNoRows {
			err = eventDomain.ErrEventNotFound
		}
		return nil, err
	}

	if eventDomain.EventStatus(status) != eventDomain.EventActive {
		err = eventDomain.ErrEventInactive
		return nil, err
	}
	if !date.After(time.Now()) {
		err = eventDomain.ErrEventPast
		return nil, err
	}
	if available < res.Tickets {
		err = &domain.InsufficientSeatsError{Available: available}
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats - $1, updated_at = $2 WHERE id = $3`,
		res.Tickets, time.Now().UTC(), res.EventID,
	); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ID:              uuid.New(),
		EventID:         res.EventID,
		EventTitle:      title,
		CustomerID:      res.Customer.ID,
		CustomerName:    res.Customer.Name,
		CustomerEmail:   res.Customer.Email,
		NumberOfTickets: res.Tickets,
		TotalAmount:     price * float64(res.Tickets),
		Status:          domain.BookingConfirmed,
		BookingDate:     now,
		CreatedAt:       now,
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (id, event_id, event_title, customer_id, customer_name, customer_email, number_of_tickets, total_amount, status, booking_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		booking.ID, booking.EventID, booking.EventTitle,
		booking.CustomerID, booking.CustomerName, booking.CustomerEmail,
		booking.NumberOfTickets, booking.TotalAmount, string(booking.Status),
		booking.BookingDate, booking.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel marca la reserva como cancelada y devuelve los asientos al evento.
func (r *BookingRepoPostgres) Cancel(ctx context.Context, bookingID, customerID uuid.UUID) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	booking, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT id, event_id, event_title, customer_id, customer_name, customer_email, number_of_tickets, total_amount, status, booking_date, created_at
		 FROM bookings WHERE id = $1 FOR UPDATE`, bookingID))
	if err != nil {
		return nil, err
	}

	if booking.CustomerID != customerID {
		err = domain.ErrNotBookingOwner
		return nil, err
	}
	if booking.Status == domain.BookingCancelled {
		err = domain.ErrAlreadyCancelled
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1 WHERE id = $2`,
		string(domain.BookingCancelled), bookingID,
	); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats + $1, updated_at = $2 WHERE id = $3`,
		booking.NumberOfTickets, time.Now().UTC(), booking.EventID,
	); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	booking.Status = domain.BookingCancelled
	return booking, nil
}

func (r *BookingRepoPostgres) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT id, event_id, event_title, customer_id, customer_name, customer_email, number_of_tickets, total_amount, status, booking_date, created_at
		 FROM bookings WHERE id = $1`, id))
}

func (r *BookingRepoPostgres) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Booking, error) {
	return r.list(ctx,
		`SELECT id, event_id, event_title, customer_id, customer_name, customer_email, number_of_tickets, total_amount, status, booking_date, created_at
		 FROM bookings WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

func (r *BookingRepoPostgres) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Booking, error) {
	return r.list(ctx,
		`SELECT id, event_id, event_title, customer_id, customer_name, customer_email, number_of_tickets, total_amount, status, booking_date, created_at
		 FROM bookings WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
}

func (r *BookingRepoPostgres) CountConfirmedByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status = $2`,
		eventID, string(domain.BookingConfirmed),
	).Scan(&count)
	return count, err
}

func (r *BookingRepoPostgres) ConfirmedCustomersByEvent(ctx context.Context, eventID uuid.UUID) ([]eventDomain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT customer_name, customer_email FROM bookings WHERE event_id = $1 AND status = $2`,
		eventID, string(domain.BookingConfirmed),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []eventDomain.Customer
	for rows.Next() {
		var c eventDomain.Customer
		if err := rows.Scan(&c.Name, &c.Email); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *BookingRepoPostgres) list(ctx context.Context, query string, arg interface{}) ([]*domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// ------------------ Helpers de escaneo ------------------

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var status string
	if err := row.Scan(&b.ID, &b.EventID, &b.EventTitle, &b.CustomerID, &b.CustomerName,
		&b.CustomerEmail, &b.NumberOfTickets, &b.TotalAmount, &status,
		&b.BookingDate, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}

// ------------------ Inicialización de DB ------------------

// InitPostgres crea la tabla bookings si no existe
func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS bookings (
            id UUID PRIMARY KEY,
            event_id UUID NOT NULL,
            event_title TEXT NOT NULL,
            customer_id UUID NOT NULL,
            customer_name TEXT NOT NULL,
            customer_email TEXT NOT NULL,
            number_of_tickets INT NOT NULL,
            total_amount DOUBLE PRECISION NOT NULL,
            status TEXT NOT NULL,
            booking_date TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )
    `)
	return err
}
