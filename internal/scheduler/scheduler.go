package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/igrejaconecta/broadcaster/pkg/logx"
)

// Scheduler runs tickFn on a cron spec ("@every 1m", "*/5 * * * *", ...).
// A tick runs right away on Start, and a tick still running when the next one
// is due causes that one to be skipped.
type Scheduler struct {
	schedule cron.Schedule
	spec     string
	tickFn   func(context.Context)

	running atomic.Bool

	mu     sync.Mutex
	c      *cron.Cron
	cancel context.CancelFunc
	first  sync.WaitGroup
}

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func New(spec string, tickFn func(context.Context)) (*Scheduler, error) {
	if tickFn == nil {
		return nil, errors.New("tickFn must not be nil")
	}
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return &Scheduler{schedule: sched, spec: spec, tickFn: tickFn}, nil
}

func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	l := cronLogger{}
	job := cron.NewChain(cron.SkipIfStillRunning(l)).Then(cron.FuncJob(func() { s.safeTick(ctx) }))

	s.c = cron.New(cron.WithParser(parser), cron.WithLogger(l))
	s.c.Schedule(s.schedule, job)
	s.c.Start()
	s.running.Store(true)

	s.first.Add(1)
	go func() {
		defer s.first.Done()
		job.Run()
	}()

	logx.L().Infow("scheduler_started", "spec", s.spec)
	return true
}

// Stop cancels the running tick's context and waits for it to return.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.c.Stop().Done()
	s.first.Wait()
	s.running.Store(false)

	logx.L().Infow("scheduler_stopped")
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logx.L().Errorw("scheduler_tick_panic", "panic", r)
		}
	}()

	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.tickFn(ctx)
	logx.L().Debugw("scheduler_tick_completed", "duration_ms", time.Since(start).Milliseconds())
}

// cronLogger routes cron's own messages through logx.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logx.L().Debugw("cron_"+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logx.L().Errorw("cron_"+msg, append(keysAndValues, "err", err)...)
}
