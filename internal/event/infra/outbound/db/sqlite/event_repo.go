package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	"github.com/davicafu/reservalab/internal/event/domain"
)

type EventRepoSQLite struct {
	db *sql.DB
}

func NewEventRepoSQLite(db *sql.DB) *EventRepoSQLite {
	return &EventRepoSQLite{db: db}
}

var _ domain.EventRepository = (*EventRepoSQLite)(nil)

// ------------------ Métodos ------------------

func (r *EventRepoSQLite) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id,title,description,date,location,total_seats,available_seats,price,organizer_id,status,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID.String(), e.Title, e.Description, e.Date, e.Location,
		e.TotalSeats, e.AvailableSeats, e.Price, e.OrganizerID.String(),
		string(e.Status), e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// GetByID con manejo de errores en uuid.Parse
func (r *EventRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, date, location, total_seats, available_seats, price, organizer_id, status, created_at, updated_at
		 FROM events WHERE id = ?`, id.String())
	return scanEvent(row)
}

// Update persiste solo los campos descriptivos. El aforo lo gestionan las
// reservas y el organizador no cambia nunca.
func (r *EventRepoSQLite) Update(ctx context.Context, e *domain.Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET title=?, description=?, date=?, location=?, price=?, status=?, updated_at=? WHERE id=?`,
		e.Title, e.Description, e.Date, e.Location, e.Price, string(e.Status), e.UpdatedAt, e.ID.String(),
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

func (r *EventRepoSQLite) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepoSQLite) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	var args []interface{}
	var conditions []string

	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.DateFrom != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *f.DateFrom)
	}
	if f.Search != nil {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ? OR location LIKE ?)")
		needle := "%" + *f.Search + "%"
		args = append(args, needle, needle, needle)
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
	var idStr, organizerStr, status string
	if err := row.Scan(&idStr, &e.Title, &e.Description, &e.Date, &e.Location,
		&e.TotalSeats, &e.AvailableSeats, &e.Price, &organizerStr, &status,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	parsedID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in DB: %w", err)
	}
	e.ID = parsedID

	parsedOrg, err := uuid.Parse(organizerStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in DB: %w", err)
	}
	e.OrganizerID = parsedOrg
	e.Status = domain.EventStatus(status)

	return &e, nil
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea la tabla events si no existe
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS events (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            date DATETIME NOT NULL,
            location TEXT NOT NULL,
            total_seats INTEGER NOT NULL,
            available_seats INTEGER NOT NULL,
            price REAL NOT NULL,
            organizer_id TEXT NOT NULL,
            status TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )
    `)
	return err
}
