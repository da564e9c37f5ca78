package worker

import (
	"context"
	"errors"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
	"github.com/igrejaconecta/broadcaster/pkg/metrics"
	"github.com/igrejaconecta/broadcaster/pkg/rmq"
)

const maxRetries = 3

type Dispatcher interface {
	Dispatch(ctx context.Context, tenantID, broadcastID int64) (broadcast.DispatchResult, error)
}

type deliverySource interface {
	Consume() (<-chan amqp.Delivery, error)
}

type republisher interface {
	PublishJSONWithHeaders(ctx context.Context, msgType string, body []byte, headers amqp.Table) error
}

type Worker struct {
	Engine Dispatcher
	Cons   deliverySource
	Pub    republisher
	Queue  string

	// backoff is the delay before a retry is republished; replaced in tests.
	backoff func(retries int) time.Duration
}

func New(engine Dispatcher, cons *rmq.Consumer, pub *rmq.Publisher) *Worker {
	return &Worker{Engine: engine, Cons: cons, Pub: pub, Queue: cons.Queue, backoff: backoffDelay}
}

func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.Cons.Consume()
	if err != nil {
		return err
	}
	logx.L().Infow("worker_started", "queue", w.Queue)

	for {
		select {
		case <-ctx.Done():
			logx.L().Infow("worker_stopping")
			return ctx.Err()

		case d, ok := <-msgs:
			if !ok {
				logx.L().Warnw("consumer_channel_closed")
				return nil
			}
			start := time.Now()
			metrics.WorkerJobsConsumed.Inc()
			w.handle(ctx, d)
			metrics.WorkerProcessDuration.Observe(time.Since(start).Seconds())
		}
	}
}

// handle always acks. Failures outside the known error kinds are republished
// with an x-retries header until maxRetries is reached.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	job, err := rmq.DecodeJob(d.Body)
	if err != nil {
		logx.L().Warnw("job_decode_error", "error", err)
		_ = d.Ack(false)
		return
	}
	fields := []any{"tenant_id", job.TenantID, "broadcast_id", job.BroadcastID}

	// Dispatch runs to completion even when shutdown starts mid-job.
	res, err := w.Engine.Dispatch(context.WithoutCancel(ctx), job.TenantID, job.BroadcastID)
	switch {
	case err == nil:
		logx.L().Infow("dispatch_success", append(fields,
			"success", res.Success, "failed", res.Failed, "total", res.Total)...)

	case errors.Is(err, broadcast.ErrPersistence):
		// messages went out; the reconcile log carries the counts
		logx.L().Errorw("dispatch_persist_failed", append(fields, "error", err)...)

	case errors.Is(err, broadcast.ErrNotFound),
		errors.Is(err, broadcast.ErrInvalidState),
		errors.Is(err, broadcast.ErrInvalidArgument),
		errors.Is(err, broadcast.ErrMessagingNotConfigured):
		logx.L().Warnw("dispatch_rejected", append(fields, "error", err)...)

	default:
		retries := headerRetries(d.Headers)
		if retries >= maxRetries {
			logx.L().Warnw("drop_after_retries", append(fields, "retries", retries, "error", err)...)
			break
		}
		delay := w.backoff(retries + 1)
		logx.L().Infow("retry_requeue", append(fields, "retries", retries+1, "delay", delay.String(), "error", err)...)
		if err := w.requeue(ctx, d, retries+1, delay); err != nil {
			logx.L().Errorw("retry_publish_error", append(fields, "retries", retries+1, "error", err)...)
		}
	}
	_ = d.Ack(false)
}

func (w *Worker) requeue(ctx context.Context, d amqp.Delivery, retries int, delay time.Duration) error {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	headers := copyHeaders(d.Headers)
	headers["x-retries"] = int32(retries)

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return w.Pub.PublishJSONWithHeaders(pubCtx, rmq.DispatchJobType, d.Body, headers)
}

func headerRetries(h amqp.Table) int {
	if h == nil {
		return 0
	}
	switch t := h["x-retries"].(type) {
	case int32:
		return int(t)
	case int64:
		return int(t)
	case int:
		return t
	case uint8:
		return int(t)
	}
	return 0
}

func backoffDelay(retries int) time.Duration {
	if retries <= 0 {
		return 0
	}
	sec := math.Pow(2, float64(retries-1))
	return time.Duration(sec) * time.Second
}

func copyHeaders(h amqp.Table) amqp.Table {
	dup := make(amqp.Table, len(h)+1)
	for k, v := range h {
		dup[k] = v
	}
	return dup
}
