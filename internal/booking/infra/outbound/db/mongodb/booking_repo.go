package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/reservalab/internal/booking/domain"
	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
)

// BookingRepoMongoDB implementa la interfaz BookingRepository para MongoDB.
type BookingRepoMongoDB struct {
	client       *mongo.Client
	eventsColl   *mongo.Collection
	bookingsColl *mongo.Collection
}

func NewBookingRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*BookingRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	db := client.Database(dbName)
	return &BookingRepoMongoDB{
		client:       client,
		eventsColl:   db.Collection("events"),
		bookingsColl: db.Collection("bookings"),
	}, nil
}

var _ domain.BookingRepository = (*BookingRepoMongoDB)(nil)
var _ eventDomain.BookingLookup = (*BookingRepoMongoDB)(nil)

// --- Structs de BSON para el mapeo ---

type mongoBooking struct {
	ID              uuid.UUID            `bson:"_id"`
	EventID         uuid.UUID            `bson:"eventId"`
	EventTitle      string               `bson:"eventTitle"`
	CustomerID      uuid.UUID            `bson:"customerId"`
	CustomerName    string               `bson:"customerName"`
	CustomerEmail   string               `bson:"customerEmail"`
	NumberOfTickets int                  `bson:"numberOfTickets"`
	TotalAmount     float64              `bson:"totalAmount"`
	Status          domain.BookingStatus `bson:"status"`
	BookingDate     time.Time            `bson:"bookingDate"`
	CreatedAt       time.Time            `bson:"createdAt"`
}

func toMongoBooking(b *domain.Booking) mongoBooking {
	return mongoBooking{
		ID:              b.ID,
		EventID:         b.EventID,
		EventTitle:      b.EventTitle,
		CustomerID:      b.CustomerID,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		NumberOfTickets: b.NumberOfTickets,
		TotalAmount:     b.TotalAmount,
		Status:          b.Status,
		BookingDate:     b.BookingDate,
		CreatedAt:       b.CreatedAt,
	}
}

func (m mongoBooking) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:              m.ID,
		EventID:         m.EventID,
		EventTitle:      m.EventTitle,
		CustomerID:      m.CustomerID,
		CustomerName:    m.CustomerName,
		CustomerEmail:   m.CustomerEmail,
		NumberOfTickets: m.NumberOfTickets,
		TotalAmount:     m.TotalAmount,
		Status:          m.Status,
		BookingDate:     m.BookingDate,
		CreatedAt:       m.CreatedAt,
	}
}

// --- Reserva transaccional ---

// Reserve descuenta los asientos y crea la reserva dentro de una transacción.
// El decremento usa un filtro condicionado (availableSeats >= tickets) con
// $inc: si otra transacción agotó el aforo, el UpdateOne no encuentra
// documento y la reserva se aborta sin tocar nada.
func (r *BookingRepoMongoDB) Reserve(ctx context.Context, res domain.Reservation) (*domain.Booking, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var event struct {
			Title          string                  `bson:"title"`
			Status         eventDomain.EventStatus `bson:"status"`
			Date           time.Time               `bson:"date"`
			AvailableSeats int                     `bson:"availableSeats"`
			Price          float64                 `bson:"price"`
		}
		if err := r.eventsColl.FindOne(sessCtx, bson.M{"_id": res.EventID}).Decode(&event); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, eventDomain.ErrEventNotFound
			}
			return nil, err
		}

		if event.Status != eventDomain.EventActive {
			return nil, eventDomain.ErrEventInactive
		}
		if !event.Date.After(time.Now()) {
			return nil, eventDomain.ErrEventPast
		}

		upd, err := r.eventsColl.UpdateOne(sessCtx,
			bson.M{"_id": res.EventID, "availableSeats": bson.M{"$gte": res.Tickets}},
			bson.M{
				"$inc": bson.M{"availableSeats": -res.Tickets},
				"$set": bson.M{"updatedAt": time.Now().UTC()},
			},
		)
		if err != nil {
			return nil, err
		}
		if upd.MatchedCount == 0 {
			return nil, &domain.InsufficientSeatsError{Available: event.AvailableSeats}
		}

		now := time.Now().UTC()
		booking := &domain.Booking{
			ID:              uuid.New(),
			EventID:         res.EventID,
			EventTitle:      event.Title,
			CustomerID:      res.Customer.ID,
			CustomerName:    res.Customer.Name,
			CustomerEmail:   res.Customer.Email,
			NumberOfTickets: res.Tickets,
			TotalAmount:     event.Price * float64(res.Tickets),
			Status:          domain.BookingConfirmed,
			BookingDate:     now,
			CreatedAt:       now,
		}
		if _, err := r.bookingsColl.InsertOne(sessCtx, toMongoBooking(booking)); err != nil {
			return nil, err
		}
		return booking, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Booking), nil
}

// Cancel marca la reserva como cancelada y devuelve los asientos con $inc.
func (r *BookingRepoMongoDB) Cancel(ctx context.Context, bookingID, customerID uuid.UUID) (*domain.Booking, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var m mongoBooking
		if err := r.bookingsColl.FindOne(sessCtx, bson.M{"_id": bookingID}).Decode(&m); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrBookingNotFound
			}
			return nil, err
		}

		if m.CustomerID != customerID {
			return nil, domain.ErrNotBookingOwner
		}
		if m.Status == domain.BookingCancelled {
			return nil, domain.ErrAlreadyCancelled
		}

		if _, err := r.bookingsColl.UpdateOne(sessCtx,
			bson.M{"_id": bookingID},
			bson.M{"$set": bson.M{"status": domain.BookingCancelled}},
		); err != nil {
			return nil, err
		}

		if _, err := r.eventsColl.UpdateOne(sessCtx,
			bson.M{"_id": m.EventID},
			bson.M{
				"$inc": bson.M{"availableSeats": m.NumberOfTickets},
				"$set": bson.M{"updatedAt": time.Now().UTC()},
			},
		); err != nil {
			return nil, err
		}

		m.Status = domain.BookingCancelled
		return m.toDomain(), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Booking), nil
}

// --- Consultas ---

func (r *BookingRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var m mongoBooking
	err := r.bookingsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *BookingRepoMongoDB) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Booking, error) {
	return r.list(ctx, bson.M{"customerId": customerID})
}

func (r *BookingRepoMongoDB) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Booking, error) {
	return r.list(ctx, bson.M{"eventId": eventID})
}

func (r *BookingRepoMongoDB) CountConfirmedByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	count, err := r.bookingsColl.CountDocuments(ctx,
		bson.M{"eventId": eventID, "status": domain.BookingConfirmed})
	return int(count), err
}

func (r *BookingRepoMongoDB) ConfirmedCustomersByEvent(ctx context.Context, eventID uuid.UUID) ([]eventDomain.Customer, error) {
	bookings, err := r.list(ctx, bson.M{"eventId": eventID, "status": domain.BookingConfirmed})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var customers []eventDomain.Customer
	for _, b := range bookings {
		if seen[b.CustomerEmail] {
			continue
		}
		seen[b.CustomerEmail] = true
		customers = append(customers, eventDomain.Customer{Name: b.CustomerName, Email: b.CustomerEmail})
	}
	return customers, nil
}

func (r *BookingRepoMongoDB) list(ctx context.Context, filter bson.M) ([]*domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.bookingsColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []*domain.Booking
	for cursor.Next(ctx) {
		var m mongoBooking
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		bookings = append(bookings, m.toDomain())
	}
	return bookings, cursor.Err()
}
