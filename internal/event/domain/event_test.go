package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validEvent() *Event {
	return &Event{
		ID:             uuid.New(),
		Title:          "Concierto de primavera",
		Description:    "Una noche de música en directo",
		Date:           time.Now().Add(48 * time.Hour),
		Location:       "Madrid",
		TotalSeats:     100,
		AvailableSeats: 100,
		Price:          20,
		OrganizerID:    uuid.New(),
		Status:         EventActive,
	}
}

func TestEvent_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		mutate  func(e *Event)
		wantErr bool
	}{
		{
			name:    "evento válido",
			mutate:  func(e *Event) {},
			wantErr: false,
		},
		{
			name:    "título demasiado corto",
			mutate:  func(e *Event) { e.Title = "ab" },
			wantErr: true,
		},
		{
			name:    "descripción demasiado corta",
			mutate:  func(e *Event) { e.Description = "corta" },
			wantErr: true,
		},
		{
			name:    "sin ubicación",
			mutate:  func(e *Event) { e.Location = "  " },
			wantErr: true,
		},
		{
			name:    "aforo cero",
			mutate:  func(e *Event) { e.TotalSeats = 0 },
			wantErr: true,
		},
		{
			name:    "aforo por encima del máximo",
			mutate:  func(e *Event) { e.TotalSeats = 100001 },
			wantErr: true,
		},
		{
			name:    "precio negativo",
			mutate:  func(e *Event) { e.Price = -1 },
			wantErr: true,
		},
		{
			name:    "fecha en el pasado",
			mutate:  func(e *Event) { e.Date = now.Add(-time.Hour) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(e)
			err := e.Validate(now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEvent)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvent_Seats(t *testing.T) {
	e := validEvent()
	e.AvailableSeats = 3

	assert.True(t, e.HasAvailableSeats(3))
	assert.False(t, e.HasAvailableSeats(4))
	assert.False(t, e.SoldOut())

	e.AvailableSeats = 0
	assert.True(t, e.SoldOut())
}

func TestEvent_IsPast(t *testing.T) {
	e := validEvent()
	assert.False(t, e.IsPast(time.Now()))
	assert.True(t, e.IsPast(e.Date.Add(time.Minute)))
}
