package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/studysprint/internal/lib/sl"
)

// maxInFlight ограничивает число одновременно обрабатываемых напоминаний.
const maxInFlight = 10

// ConsumeReminders подписывается на очередь напоминаний и передаёт тело
// каждого сообщения в handler. Успешно обработанные сообщения подтверждаются,
// при ошибке handler сообщение возвращается в очередь.
func ConsumeReminders(ctx context.Context, ch *amqp.Channel, log *slog.Logger, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumeReminders"

	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))

	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(d.Body); err != nil {
						log.Error("failed to handle reminder", sl.Err(err))
						if nackErr := d.Nack(false, true); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := d.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
