package scheduler

import (
	"context"
	"time"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
	"github.com/igrejaconecta/broadcaster/pkg/metrics"
	"github.com/igrejaconecta/broadcaster/pkg/model"
)

type DueLister interface {
	ListScheduled(ctx context.Context, before time.Time) ([]broadcast.Broadcast, error)
}

// Submitter hands a due broadcast off for dispatch without waiting for it.
type Submitter interface {
	Submit(ctx context.Context, job model.DispatchJob) error
}

// Poller finds due broadcasts and submits them.
type Poller struct {
	store  DueLister
	submit Submitter
	now    func() time.Time
}

func NewPoller(store DueLister, submit Submitter, now func() time.Time) *Poller {
	if now == nil {
		now = time.Now
	}
	return &Poller{store: store, submit: submit, now: now}
}

// Tick submits every pending broadcast whose time has come and returns how
// many were handed off. A broadcast that fails to submit stays pending and is
// picked up again on the next tick.
func (p *Poller) Tick(ctx context.Context) (int, error) {
	metrics.SchedulerTicks.Inc()

	due, err := p.store.ListScheduled(ctx, p.now().UTC())
	if err != nil {
		return 0, err
	}

	initiated := 0
	for _, b := range due {
		if ctx.Err() != nil {
			break
		}
		job := model.DispatchJob{TenantID: b.TenantID, BroadcastID: b.ID}
		if err := p.submit.Submit(ctx, job); err != nil {
			metrics.SchedulerSubmitErrors.Inc()
			logx.L().Warnw("scheduler_submit_failed",
				"tenant_id", b.TenantID, "broadcast_id", b.ID, "err", err)
			continue
		}
		initiated++
	}
	metrics.SchedulerInitiated.Add(float64(initiated))

	if len(due) > 0 {
		logx.L().Infow("scheduler_tick", "due", len(due), "initiated", initiated)
	}
	return initiated, nil
}

// Run is Tick shaped for Scheduler.
func (p *Poller) Run(ctx context.Context) {
	if _, err := p.Tick(ctx); err != nil {
		logx.L().Errorw("scheduler_tick_failed", "err", err)
	}
}
