// Package service holds the adapters that push domain events out of the
// process.  Publishing is best effort: errors are logged and returned so the
// caller can ignore them without interrupting the request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/booking"
	"github.com/iliyamo/venue-box-office/internal/queue"
)

// Publisher sends booking.confirmed messages to RabbitMQ.  It dials per
// message, which keeps it free of connection state at the counter's
// booking rate.  It implements booking.Notifier.
type Publisher struct {
	url     string
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log logrus.FieldLogger) *Publisher {
	return &Publisher{url: url, timeout: 5 * time.Second, log: log.WithField("component", "publisher")}
}

// BookingConfirmed publishes r as a persistent JSON message on the
// booking.confirmed queue.
func (p *Publisher) BookingConfirmed(ctx context.Context, r booking.Result) error {
	body, err := json.Marshal(NewBookingConfirmedEvent(r))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.timeout)})
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue.BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		p.log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    r.BookingID,
		Timestamp:    r.ConfirmedAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.BookingConfirmedQueue, false, false, pub); err != nil {
		p.log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	p.log.WithField("booking_id", r.BookingID).Debug("booking.confirmed published")
	return nil
}

// NewBookingConfirmedEvent maps a committed booking onto its message.
func NewBookingConfirmedEvent(r booking.Result) queue.BookingConfirmedEvent {
	seats := make([]string, len(r.Seats))
	for i, s := range r.Seats {
		seats[i] = string(s)
	}
	return queue.BookingConfirmedEvent{
		BookingID:       r.BookingID,
		TicketID:        r.TicketID,
		CustomerID:      r.CustomerID,
		EventID:         r.Showing.EventID,
		EventName:       r.Event.Name,
		Hall:            r.Hall,
		Date:            r.Showing.Date.Format("2006-01-02"),
		Time:            r.Showing.Time,
		Seats:           seats,
		Wheelchair:      r.Wheelchair,
		Subtotal:        r.Subtotal.StringFixed(2),
		DiscountCode:    r.DiscountCode,
		DiscountPercent: r.DiscountPercent,
		Total:           r.FinalPrice.StringFixed(2),
		ConfirmedAt:     r.ConfirmedAt.UTC().Format(time.RFC3339),
	}
}
