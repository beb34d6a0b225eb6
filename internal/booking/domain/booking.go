package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

const (
	// MinTickets y MaxTickets acotan cuántas entradas admite una sola reserva.
	MinTickets = 1
	MaxTickets = 10
)

// Booking es el registro emitido por el ledger de asientos. Los datos del
// cliente y el título del evento se desnormalizan en el momento de la reserva
// para que las notificaciones y listados no dependan de otros agregados.
// TotalAmount se fija al crear y nunca se recalcula aunque cambie el precio
// del evento.
type Booking struct {
	ID              uuid.UUID     `json:"id"`
	EventID         uuid.UUID     `json:"event_id"`
	EventTitle      string        `json:"event_title"`
	CustomerID      uuid.UUID     `json:"customer_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	NumberOfTickets int           `json:"number_of_tickets"`
	TotalAmount     float64       `json:"total_amount"`
	Status          BookingStatus `json:"status"`
	BookingDate     time.Time     `json:"booking_date"`
	CreatedAt       time.Time     `json:"created_at"`
}

func (b *Booking) PartitionKey() string {
	return b.EventID.String()
}

// IsConfirmed indica si la reserva sigue contando contra el aforo.
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingConfirmed
}

// ValidTicketCount comprueba el rango permitido de entradas por reserva.
func ValidTicketCount(n int) bool {
	return n >= MinTickets && n <= MaxTickets
}

// BookingStats agrega las reservas de un evento para su organizador.
// Entradas vendidas e ingresos suman solo las reservas confirmadas.
type BookingStats struct {
	TotalBookings     int     `json:"total_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	TotalTicketsSold  int     `json:"total_tickets_sold"`
	TotalRevenue      float64 `json:"total_revenue"`
}

// ComputeStats calcula las estadísticas agregadas de un listado de reservas.
func ComputeStats(bookings []*Booking) BookingStats {
	var stats BookingStats
	stats.TotalBookings = len(bookings)
	for _, b := range bookings {
		if b.IsConfirmed() {
			stats.ConfirmedBookings++
			stats.TotalTicketsSold += b.NumberOfTickets
			stats.TotalRevenue += b.TotalAmount
		} else {
			stats.CancelledBookings++
		}
	}
	return stats
}
