package rabbitmq

import (
	"context"
	"net/url"

	"github.com/Azure/go-amqp"
	"github.com/jlecren/rabbitmq-nagios-plugins/log"
)

// Publish sends every body as a durable message to queue. The queue must
// already exist. It is used to give a broker a known backlog.
func Publish(ctx context.Context, args ConnArguments, queue string, bodies ...[]byte) error {
	connection, session, err := Connect(args)
	if err != nil {
		return err
	}
	defer connection.Close()
	defer session.Close(ctx)

	// RabbitMQ 4 AMQP 1.0 v2 address format
	targetAddress := "/queues/" + url.PathEscape(queue)

	sender, err := session.NewSender(ctx, targetAddress, &amqp.SenderOptions{
		TargetDurability: amqp.DurabilityUnsettledState,
	})
	if err != nil {
		return err
	}
	defer sender.Close(ctx)

	log.Verbose("sending %d messages to %s", len(bodies), targetAddress)
	for _, body := range bodies {
		message := amqp.NewMessage(body)
		message.Header = &amqp.MessageHeader{Durable: true}
		if err := sender.Send(ctx, message, nil); err != nil {
			return err
		}
	}

	return nil
}
