package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recipient es el destinatario de un aviso.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Notice es un aviso ya formateado, listo para entregar. El canal de entrega
// (log, Kafka, un API de correo) es intercambiable detrás de Deliverer.
type Notice struct {
	Subject    string      `json:"subject"`
	Recipients []Recipient `json:"recipients"`
	Body       string      `json:"body"`
}

// Deliverer entrega un aviso. El resultado de la entrega no se propaga nunca
// al flujo de reserva/cancelación que lo originó.
type Deliverer interface {
	Deliver(ctx context.Context, n Notice) error
}

// ---------- Payloads de los jobs de notificación ----------

// BookingConfirmation lleva los datos desnormalizados de una reserva recién
// confirmada, capturados en el momento de la reserva.
type BookingConfirmation struct {
	BookingID       uuid.UUID `json:"booking_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	EventTitle      string    `json:"event_title"`
	NumberOfTickets int       `json:"number_of_tickets"`
	TotalAmount     float64   `json:"total_amount"`
	BookingDate     time.Time `json:"booking_date"`
}

// EventUpdate lleva el aviso de cambios de un evento a todos los clientes con
// reserva confirmada.
type EventUpdate struct {
	EventID       uuid.UUID   `json:"event_id"`
	EventTitle    string      `json:"event_title"`
	UpdatedFields []string    `json:"updated_fields"`
	Customers     []Recipient `json:"customers"`
}
