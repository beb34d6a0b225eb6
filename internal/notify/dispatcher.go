package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/davicafu/reservalab/internal/jobs"
)

// Dispatcher traduce cada job de notificación en un aviso legible y lo delega
// en el Deliverer configurado. No tiene más efectos que la propia entrega.
type Dispatcher struct {
	deliverer Deliverer
	log       *zap.Logger
}

// Verificación estática: el dispatcher es el ejecutor de la cola de jobs.
var _ jobs.Executor = (*Dispatcher)(nil)

func NewDispatcher(deliverer Deliverer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{deliverer: deliverer, log: log}
}

// Execute despacha el job según su tipo. Un tipo desconocido falla el job con
// jobs.ErrUnknownKind.
func (d *Dispatcher) Execute(ctx context.Context, job jobs.Job) error {
	switch job.Kind {
	case jobs.KindBookingConfirmation:
		payload, ok := job.Payload.(BookingConfirmation)
		if !ok {
			return fmt.Errorf("booking-confirmation: unexpected payload %T", job.Payload)
		}
		return d.deliverer.Deliver(ctx, d.confirmationNotice(payload))

	case jobs.KindEventUpdate:
		payload, ok := job.Payload.(EventUpdate)
		if !ok {
			return fmt.Errorf("event-update-notification: unexpected payload %T", job.Payload)
		}
		return d.deliverer.Deliver(ctx, d.updateNotice(payload))

	default:
		return fmt.Errorf("%w: %s", jobs.ErrUnknownKind, job.Kind)
	}
}

// confirmationNotice formatea el recibo de confirmación de una reserva.
func (d *Dispatcher) confirmationNotice(p BookingConfirmation) Notice {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", p.CustomerName)
	b.WriteString("Your booking has been confirmed!\n\n")
	fmt.Fprintf(&b, "Event: %s\n", p.EventTitle)
	fmt.Fprintf(&b, "Number of Tickets: %d\n", p.NumberOfTickets)
	fmt.Fprintf(&b, "Total Amount: $%.2f\n", p.TotalAmount)
	fmt.Fprintf(&b, "Booking ID: %s\n", p.BookingID)
	fmt.Fprintf(&b, "Booking Date: %s\n", p.BookingDate.Format("2006-01-02 15:04:05"))
	b.WriteString("\nThank you for booking with us!")

	return Notice{
		Subject:    fmt.Sprintf("Booking Confirmation - %s", p.EventTitle),
		Recipients: []Recipient{{Name: p.CustomerName, Email: p.CustomerEmail}},
		Body:       b.String(),
	}
}

// updateNotice formatea el aviso de cambios de un evento, enumerando los
// campos modificados y la lista completa de destinatarios.
func (d *Dispatcher) updateNotice(p EventUpdate) Notice {
	var b strings.Builder
	fmt.Fprintf(&b, "The event %q has been updated.\n", p.EventTitle)
	fmt.Fprintf(&b, "Updated Fields: %s\n", strings.Join(p.UpdatedFields, ", "))
	fmt.Fprintf(&b, "Notifying %d customer(s):\n", len(p.Customers))
	for i, c := range p.Customers {
		fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, c.Name, c.Email)
	}
	b.WriteString("Please check your booking for the latest details.")

	return Notice{
		Subject:    fmt.Sprintf("Event Update - %s", p.EventTitle),
		Recipients: p.Customers,
		Body:       b.String(),
	}
}
