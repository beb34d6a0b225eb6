package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/davicafu/reservalab/internal/event/domain"
)

type EventRepoPostgres struct {
	db *sql.DB
}

func NewEventRepoPostgres(db *sql.DB) *EventRepoPostgres {
	return &EventRepoPostgres{db: db}
}

var _ domain.EventRepository = (*EventRepoPostgres)(nil)

// ------------------ CRUD ------------------

func (r *EventRepoPostgres) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, title, description, date, location, total_seats, available_seats, price, organizer_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.Title, e.Description, e.Date, e.Location,
		e.TotalSeats, e.AvailableSeats, e.Price, e.OrganizerID,
		string(e.Status), e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *EventRepoPostgres) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, date, location, total_seats, available_seats, price, organizer_id, status, created_at, updated_at
		 FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// Update persiste solo los campos descriptivos. El aforo lo gestionan las
// reservas y el organizador no cambia nunca.
func (r *EventRepoPostgres) Update(ctx context.Context, e *domain.Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET title=$1, description=$2, date=$3, location=$4, price=$5, status=$6, updated_at=$7 WHERE id=$8`,
		e.Title, e.Description, e.Date, e.Location, e.Price, string(e.Status), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepoPostgres) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepoPostgres) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	var args []interface{}
	var conditions []string
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != nil {
		conditions = append(conditions, "status = "+arg(string(*f.Status)))
	}
	if f.DateFrom != nil {
		conditions = append(conditions, "date >= "+arg(*f.DateFrom))
	}
	if f.Search != nil {
		needle := arg("%" + *f.Search + "%")
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR location ILIKE %s)", needle, needle, needle))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "date ASC"
	if f.Sort.Desc {
		orderBy = "date DESC"
	}

	query := fmt.Sprintf(`SELECT id, title, description, date, location, total_seats, available_seats, price, organizer_id, status, created_at, updated_at
		FROM events %s ORDER BY %s`, where, orderBy)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ------------------ Helpers de escaneo ------------------

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	var status string
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location,
		&e.TotalSeats, &e.AvailableSeats, &e.Price, &e.OrganizerID, &status,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	return &e, nil
}

// ------------------ Inicialización de DB ------------------

// InitPostgres crea la tabla events si no existe
func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS events (
            id UUID PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            date TIMESTAMPTZ NOT NULL,
            location TEXT NOT NULL,
            total_seats INT NOT NULL,
            available_seats INT NOT NULL,
            price DOUBLE PRECISION NOT NULL,
            organizer_id UUID NOT NULL,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )
    `)
	return err
}
