package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/reservalab/internal/event/domain"
)

// EventRepoMongoDB implementa la interfaz EventRepository para MongoDB.
type EventRepoMongoDB struct {
	client     *mongo.Client
	eventsColl *mongo.Collection
}

func NewEventRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*EventRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return &EventRepoMongoDB{
		client:     client,
		eventsColl: client.Database(dbName).Collection("events"),
	}, nil
}

var _ domain.EventRepository = (*EventRepoMongoDB)(nil)

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoEvent struct {
	ID             uuid.UUID          `bson:"_id"`
	Title          string             `bson:"title"`
	Description    string             `bson:"description"`
	Date           time.Time          `bson:"date"`
	Location       string             `bson:"location"`
	TotalSeats     int                `bson:"totalSeats"`
	AvailableSeats int                `bson:"availableSeats"`
	Price          float64            `bson:"price"`
	OrganizerID    uuid.UUID          `bson:"organizerId"`
	Status         domain.EventStatus `bson:"status"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toMongoEvent(e *domain.Event) mongoEvent {
	return mongoEvent{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Date:           e.Date,
		Location:       e.Location,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.AvailableSeats,
		Price:          e.Price,
		OrganizerID:    e.OrganizerID,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (m mongoEvent) toDomain() *domain.Event {
	return &domain.Event{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Date:           m.Date,
		Location:       m.Location,
		TotalSeats:     m.TotalSeats,
		AvailableSeats: m.AvailableSeats,
		Price:          m.Price,
		OrganizerID:    m.OrganizerID,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// --- CRUD ---

func (r *EventRepoMongoDB) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.eventsColl.InsertOne(ctx, toMongoEvent(e))
	return err
}

func (r *EventRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var m mongoEvent
	err := r.eventsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

// Update persiste solo los campos descriptivos. El aforo lo gestionan las
// reservas con $inc y el organizador no cambia nunca.
func (r *EventRepoMongoDB) Update(ctx context.Context, e *domain.Event) error {
	update := bson.M{"$set": bson.M{
		"title":       e.Title,
		"description": e.Description,
		"date":        e.Date,
		"location":    e.Location,
		"price":       e.Price,
		"status":      e.Status,
		"updatedAt":   e.UpdatedAt,
	}}

	res, err := r.eventsColl.UpdateOne(ctx, bson.M{"_id": e.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepoMongoDB) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.eventsColl.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepoMongoDB) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	filter := bson.M{}
	if f.Status != nil {
		filter["status"] = *f.Status
	}
	if f.DateFrom != nil {
		filter["date"] = bson.M{"$gte": *f.DateFrom}
	}
	if f.Search != nil {
		regex := primitive.Regex{Pattern: *f.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"description": regex},
			bson.M{"location": regex},
		}
	}

	dir := 1
	if f.Sort.Desc {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: dir}})

	cursor, err := r.eventsColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*domain.Event
	for cursor.Next(ctx) {
		var m mongoEvent
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		events = append(events, m.toDomain())
	}
	return events, cursor.Err()
}
