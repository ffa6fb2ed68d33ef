package domain

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/opsboard/internal/events"
)

// Message is a decoded event together with the delivery it arrived on
type Message struct {
	Event    events.Event
	Delivery amqp.Delivery
}
