package rmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/igrejaconecta/broadcaster/pkg/model"
)

// DispatchJobType is the AMQP message type of a dispatch job.
const DispatchJobType = "broadcast.dispatch"

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	_ = p.ch.Close()
	return p.conn.Close()
}

func (p *Publisher) PublishJSON(ctx context.Context, msgType string, body []byte) error {
	return p.PublishJSONWithHeaders(ctx, msgType, body, nil)
}

func (p *Publisher) PublishJSONWithHeaders(ctx context.Context, msgType string, body []byte, headers amqp.Table) error {
	return p.ch.PublishWithContext(ctx,
		"", p.queue, false, false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Type:         msgType,
			Timestamp:    time.Now(),
			Body:         body,
		})
}

// PublishJob enqueues a dispatch request for one broadcast.
func (p *Publisher) PublishJob(ctx context.Context, job model.DispatchJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.PublishJSON(ctx, DispatchJobType, body)
}

// DecodeJob parses a delivery body produced by PublishJob.
func DecodeJob(body []byte) (model.DispatchJob, error) {
	var job model.DispatchJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, err
	}
	if job.TenantID <= 0 || job.BroadcastID <= 0 {
		return job, fmt.Errorf("invalid dispatch job: tenant_id=%d broadcast_id=%d", job.TenantID, job.BroadcastID)
	}
	return job, nil
}

type Consumer struct {
	conn  *amqp.Connection
	Ch    *amqp.Channel
	Queue string
}

// NewConsumer declares the queue and limits unacked deliveries to prefetch.
func NewConsumer(url, queue string, prefetch int) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	if prefetch <= 0 {
		prefetch = 1
	}
	_ = ch.Qos(prefetch, 0, false)
	return &Consumer{conn: conn, Ch: ch, Queue: queue}, nil
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	return c.Ch.Consume(c.Queue, "", false, false, false, false, nil)
}

func (c *Consumer) Close() error {
	_ = c.Ch.Close()
	return c.conn.Close()
}
