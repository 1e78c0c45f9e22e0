package email

import (
	"context"
	"fmt"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/kafka"
	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/easyrent/vehiclerental/internal/receipt"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers a composed message.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// LogTransport writes messages to the log instead of a mail server.
type LogTransport struct {
	log logger.Logger
}

func NewLogTransport(log logger.Logger) *LogTransport {
	return &LogTransport{log: log.Action("send_email")}
}

func (t *LogTransport) Deliver(_ context.Context, msg Message) error {
	t.log.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

type Sender struct {
	users     UserLookup
	transport Transport
}

func NewSender(users UserLookup, transport Transport) *Sender {
	return &Sender{users: users, transport: transport}
}

// Send notifies the booking owner about a lifecycle event. Event types
// without a template are ignored.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	msg, ok := compose(event)
	if !ok {
		return nil
	}

	user, err := s.users.GetByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("lookup recipient %d: %w", event.UserID, err)
	}
	msg.To = user.Email
	msg.Body = fmt.Sprintf("Hi %s,\n\n%s", user.FullName, msg.Body)

	return s.transport.Deliver(ctx, msg)
}

func compose(e kafka.BookingEvent) (Message, bool) {
	ref := fmt.Sprintf("booking #%d (%s)", e.BookingID, e.TransactionID)
	switch e.Type {
	case kafka.EventBookingCreated:
		return Message{
			Subject: "Complete your EasyRent payment",
			Body:    fmt.Sprintf("We are holding %s. Total due: %s.", ref, receipt.FormatPrice(e.Price)),
		}, true
	case kafka.EventBookingPaid:
		return Message{
			Subject: "Payment received",
			Body:    fmt.Sprintf("We received %s for %s.", receipt.FormatPrice(e.Price), ref),
		}, true
	case kafka.EventBookingConfirmed:
		return Message{
			Subject: "Your EasyRent booking is confirmed",
			Body:    fmt.Sprintf("Your %s is confirmed. Your receipt is available in your booking history.", ref),
		}, true
	case kafka.EventBookingCancelled:
		return Message{
			Subject: "Booking cancelled",
			Body:    fmt.Sprintf("Your %s has been cancelled.", ref),
		}, true
	case kafka.EventBookingAbandoned:
		return Message{
			Subject: "Booking released",
			Body:    fmt.Sprintf("We did not receive payment in time, so %s was released.", ref),
		}, true
	default:
		return Message{}, false
	}
}
