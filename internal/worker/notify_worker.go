package worker

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/example/helpdesk/internal/mq"
	"github.com/example/helpdesk/internal/notify"
)

// NotifyWorker consumes ticket events and forwards them through a Sender.
type NotifyWorker struct {
	id       string
	consumer mq.Consumer
	sender   notify.Sender
}

// NewNotifyWorker creates the worker with random identifier.
func NewNotifyWorker(consumer mq.Consumer, sender notify.Sender) *NotifyWorker {
	return &NotifyWorker{
		id:       uuid.New().String(),
		consumer: consumer,
		sender:   sender,
	}
}

// Run blocks consuming events until ctx is done or the consumer fails.
func (w *NotifyWorker) Run(ctx context.Context) error {
	log.Printf("notify worker %s started", w.id)
	err := w.consumer.Consume(ctx, w.handle)
	log.Printf("notify worker %s shutting down", w.id)
	return err
}

func (w *NotifyWorker) handle(ctx context.Context, event mq.TicketEvent) error {
	return w.sender.Send(ctx, notify.FormatEvent(event))
}
