package queue

import (
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const maxRetries = 3

// AMQPQueue publishes and consumes durable queues on a RabbitMQ broker.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

func NewAMQPQueue(url string, log *zap.Logger) (*AMQPQueue, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQPQueue{conn: conn, ch: ch, log: log}, nil
}

func (q *AMQPQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (q *AMQPQueue) Publish(topic string, body []byte) error {
	if _, err := q.declare(topic); err != nil {
		return err
	}
	return q.ch.Publish(
		"",    // default exchange
		topic, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Subscribe consumes the topic on a background goroutine. A handler error
// republishes the delivery with an incremented x-retry-count header, up to
// maxRetries times; after that the delivery is acked and dropped. Republishing
// is required for the bound to hold — the broker redelivers a Nack'd message
// with its original headers, so the counter would never advance.
func (q *AMQPQueue) Subscribe(topic string, handler func(body []byte) error) error {
	queue, err := q.declare(topic)
	if err != nil {
		return err
	}
	msgs, err := q.ch.Consume(
		queue.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			err := handler(d.Body)
			if err == nil {
				d.Ack(false)
				continue
			}

			attempt := retryAttempt(d.Headers)
			q.log.Warn("job failed",
				zap.String("topic", topic),
				zap.Int32("attempt", attempt+1),
				zap.Error(err))

			if attempt >= maxRetries {
				q.log.Error("job permanently failed", zap.String("topic", topic))
				d.Ack(false)
				continue
			}
			if perr := q.ch.Publish("", topic, false, false, retryPublishing(d.Body, attempt+1)); perr != nil {
				q.log.Error("failed to republish job", zap.String("topic", topic), zap.Error(perr))
				d.Nack(false, true) // let the broker hold it rather than lose it
				continue
			}
			d.Ack(false)
		}
	}()
	return nil
}

// retryAttempt reads the redelivery counter off the message headers. A fresh
// publish carries no header, which counts as attempt zero.
func retryAttempt(headers amqp.Table) int32 {
	switch v := headers["x-retry-count"].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	}
	return 0
}

func retryPublishing(body []byte, attempt int32) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{"x-retry-count": attempt},
		Body:         body,
	}
}

var _ Queue = (*AMQPQueue)(nil)
