package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
	"github.com/igrejaconecta/broadcaster/pkg/model"
)

// ErrBusy is returned by LocalSubmitter when every dispatch slot is taken.
var ErrBusy = errors.New("dispatch pool is full")

type Dispatcher interface {
	Dispatch(ctx context.Context, tenantID, broadcastID int64) (broadcast.DispatchResult, error)
}

// LocalSubmitter dispatches in-process, at most maxInflight at a time.
type LocalSubmitter struct {
	d   Dispatcher
	sem chan struct{}
	wg  sync.WaitGroup
}

func NewLocalSubmitter(d Dispatcher, maxInflight int) *LocalSubmitter {
	if maxInflight <= 0 {
		maxInflight = 1
	}
	return &LocalSubmitter{d: d, sem: make(chan struct{}, maxInflight)}
}

func (s *LocalSubmitter) Submit(ctx context.Context, job model.DispatchJob) error {
	select {
	case s.sem <- struct{}{}:
	default:
		return ErrBusy
	}

	// A started dispatch runs to completion even if the tick is cancelled;
	// Wait drains them on shutdown.
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.sem }()
		defer func() {
			if r := recover(); r != nil {
				logx.L().Errorw("dispatch_panic", "broadcast_id", job.BroadcastID, "panic", r)
			}
		}()

		res, err := s.d.Dispatch(ctx, job.TenantID, job.BroadcastID)
		if err != nil {
			logx.L().Warnw("scheduled_dispatch_failed",
				"tenant_id", job.TenantID, "broadcast_id", job.BroadcastID, "err", err)
			return
		}
		logx.L().Infow("scheduled_dispatch_done",
			"tenant_id", job.TenantID, "broadcast_id", job.BroadcastID,
			"success", res.Success, "failed", res.Failed, "total", res.Total)
	}()
	return nil
}

// Wait blocks until every submitted dispatch has returned.
func (s *LocalSubmitter) Wait() {
	s.wg.Wait()
}

type JobPublisher interface {
	PublishJob(ctx context.Context, job model.DispatchJob) error
}

// QueueSubmitter hands jobs to the dispatch workers over RabbitMQ.
type QueueSubmitter struct {
	pub JobPublisher
}

func NewQueueSubmitter(pub JobPublisher) *QueueSubmitter {
	return &QueueSubmitter{pub: pub}
}

func (q *QueueSubmitter) Submit(ctx context.Context, job model.DispatchJob) error {
	return q.pub.PublishJob(ctx, job)
}
