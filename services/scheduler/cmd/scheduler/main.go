package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/igrejaconecta/broadcaster/internal/bootstrap"
	"github.com/igrejaconecta/broadcaster/internal/scheduler"
	"github.com/igrejaconecta/broadcaster/internal/store"
	"github.com/igrejaconecta/broadcaster/pkg/config"
	"github.com/igrejaconecta/broadcaster/pkg/db"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
	"github.com/igrejaconecta/broadcaster/pkg/metrics"
	"github.com/igrejaconecta/broadcaster/pkg/rmq"
)

func main() {
	_ = godotenv.Load()

	logx.Init()
	defer logx.Sync()

	config.MustLoadScheduler()
	cfg := config.Scheduler

	sqlDB, err := db.Open(cfg.DBDSN)
	if err != nil {
		logx.L().Fatalw("db_open_error", "error", err)
	}
	defer sqlDB.Close()

	// With RMQ_URL set, due broadcasts go to the dispatch workers; otherwise
	// they are dispatched here.
	var (
		submit scheduler.Submitter
		local  *scheduler.LocalSubmitter
	)
	if cfg.RMQURL != "" {
		pub, err := rmq.NewPublisher(cfg.RMQURL, cfg.Queue)
		if err != nil {
			logx.L().Fatalw("rmq_publisher_init_error", "error", err)
		}
		defer pub.Close()
		submit = scheduler.NewQueueSubmitter(pub)
		logx.L().Infow("scheduler_mode", "mode", "queue", "queue", cfg.Queue)
	} else {
		engine, closeEngine, err := bootstrap.Engine(sqlDB, cfg.Dispatch, cfg.WhatsApp, cfg.Redis)
		if err != nil {
			logx.L().Fatalw("engine_init_error", "error", err)
		}
		defer closeEngine()
		local = scheduler.NewLocalSubmitter(engine, cfg.MaxInflight)
		submit = local
		logx.L().Infow("scheduler_mode", "mode", "local", "max_inflight", cfg.MaxInflight)
	}

	poller := scheduler.NewPoller(store.New(sqlDB), submit, time.Now)
	sched, err := scheduler.New(cfg.Spec, poller.Run)
	if err != nil {
		logx.L().Fatalw("scheduler_init_error", "error", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	msrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux}
	go func() {
		logx.L().Infow("metrics_listen_start", "addr", msrv.Addr)
		if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.L().Errorw("metrics_server_error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched.Start()
	<-ctx.Done()
	logx.L().Infow("signal_received")

	sched.Stop()
	if local != nil {
		local.Wait()
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = msrv.Shutdown(shCtx)

	logx.L().Infow("scheduler stopped gracefully")
}
