package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	"github.com/davicafu/reservalab/internal/booking/domain"
	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
)

type BookingRepoSQLite struct {
	db *sql.DB
}

func NewBookingRepoSQLite(db *sql.DB) *BookingRepoSQLite {
	return &BookingRepoSQLite{db: db}
}

var _ domain.BookingRepository = (*BookingRepoSQLite)(nil)
var _ eventDomain.BookingLookup = (*BookingRepoSQLite)(nil)

// ------------------ Métodos ------------------

// Reserve descuenta los asientos y crea la reserva en una única transacción.
// El UPDATE condicionado (available_seats >= ?) es la barrera contra el
// overbooking: si otra transacción se llevó los asientos antes, no afecta
// ninguna fila y la reserva se aborta.
func (r *BookingRepoSQLite) Reserve(ctx context.Context, res domain.Reservation) (*domain.Booking, error) {
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
		`SELECT title, status, date, available_seats, price FROM events WHERE id = ?`,
		res.EventID.String(),
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

	result, err := tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats - ?, updated_at = ?
		 WHERE id = ? AND available_seats >= ?`,
		res.Tickets, time.Now().UTC(), res.EventID.String(), res.Tickets,
	)
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		err = &domain.InsufficientSeatsError{Available: available}
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
		`INSERT INTO bookings (id,event_id,event_title,customer_id,customer_name,customer_email,number_of_tickets,total_amount,status,booking_date,created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		booking.ID.String(), booking.EventID.String(), booking.EventTitle,
		booking.CustomerID.String(), booking.CustomerName, booking.CustomerEmail,
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

// Cancel marca la reserva como cancelada y devuelve los asientos al evento,
// todo en la misma transacción.
func (r *BookingRepoSQLite) Cancel(ctx context.Context, bookingID, customerID uuid.UUID) (*domain.Booking, error) {
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
		 FROM bookings WHERE id = ?`, bookingID.String()))
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
		`UPDATE bookings SET status = ? WHERE id = ?`,
		string(domain.BookingCancelled), bookingID.String(),
	); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats + ?, updated_at = ? WHERE id = ?`,
		booking.NumberOfTickets, time.Now().UTC(), booking.EventID.String(),
	); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	booking.Status = domain.BookingCancelled
	return booking, nil
}

func (r *BookingRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT id, event_id, event_title, customer_id, customer_name, customer_email, number_of_tickets, total_amount, status, booking_date, created_at
		 FROM bookings WHERE id = ?`, id.String()))
}

func (r *BookingRepoSQLite) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Booking, error) {
	return r.list(ctx,
		`SELECT id, event_id, event_title, customer_id, customer_name, customer_email, number_of_tickets, total_amount, status, booking_date, created_at
		 FROM bookings WHERE customer_id = ? ORDER BY created_at DESC`, customerID.String())
}

func (r *BookingRepoSQLite) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Booking, error) {
	return r.list(ctx,
		`SELECT id, event_id, event_title, customer_id, customer_name, customer_email, number_of_tickets, total_amount, status, booking_date, created_at
		 FROM bookings WHERE event_id = ? ORDER BY created_at DESC`, eventID.String())
}

func (r *BookingRepoSQLite) CountConfirmedByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = ? AND status = ?`,
		eventID.String(), string(domain.BookingConfirmed),
	).Scan(&count)
	return count, err
}

// ConfirmedCustomersByEvent devuelve cada cliente una sola vez aunque tenga
// varias reservas confirmadas.
func (r *BookingRepoSQLite) ConfirmedCustomersByEvent(ctx context.Context, eventID uuid.UUID) ([]eventDomain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT customer_name, customer_email FROM bookings WHERE event_id = ? AND status = ?`,
		eventID.String(), string(domain.BookingConfirmed),
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

func (r *BookingRepoSQLite) list(ctx context.Context, query string, arg interface{}) ([]*domain.Booking, error) {
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
	var idStr, eventStr, customerStr, status string
	if err := row.Scan(&idStr, &eventStr, &b.EventTitle, &customerStr, &b.CustomerName,
		&b.CustomerEmail, &b.NumberOfTickets, &b.TotalAmount, &status,
		&b.BookingDate, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	for _, pair := range []struct {
		src  string
		dest *uuid.UUID
	}{{idStr, &b.ID}, {eventStr, &b.EventID}, {customerStr, &b.CustomerID}} {
		parsed, err := uuid.Parse(pair.src)
		if err != nil {
			return nil, fmt.Errorf("invalid UUID in DB: %w", err)
		}
		*pair.dest = parsed
	}
	b.Status = domain.BookingStatus(status)

	return &b, nil
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea la tabla bookings si no existe
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            event_id TEXT NOT NULL,
            event_title TEXT NOT NULL,
            customer_id TEXT NOT NULL,
            customer_name TEXT NOT NULL,
            customer_email TEXT NOT NULL,
            number_of_tickets INTEGER NOT NULL,
            total_amount REAL NOT NULL,
            status TEXT NOT NULL,
            booking_date DATETIME NOT NULL,
            created_at DATETIME NOT NULL
        )
    `)
	return err
}
