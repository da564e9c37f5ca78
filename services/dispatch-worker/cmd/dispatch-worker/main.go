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
	"github.com/igrejaconecta/broadcaster/pkg/config"
	"github.com/igrejaconecta/broadcaster/pkg/db"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
	"github.com/igrejaconecta/broadcaster/pkg/metrics"
	"github.com/igrejaconecta/broadcaster/pkg/rmq"
	"github.com/igrejaconecta/broadcaster/services/dispatch-worker/worker"
)

func main() {
	_ = godotenv.Load()

	logx.Init()
	defer logx.Sync()

	config.MustLoadWorker()
	cfg := config.Worker

	sqlDB, err := db.Open(cfg.DBDSN)
	if err != nil {
		logx.L().Fatalw("db_open_error", "error", err)
	}
	defer sqlDB.Close()

	engine, closeEngine, err := bootstrap.Engine(sqlDB, cfg.Dispatch, cfg.WhatsApp, cfg.Redis)
	if err != nil {
		logx.L().Fatalw("engine_init_error", "error", err)
	}
	defer closeEngine()

	cons, err := rmq.NewConsumer(cfg.RMQURL, cfg.Queue, 1)
	if err != nil {
		logx.L().Fatalw("rmq_consumer_init_error", "error", err)
	}
	defer cons.Close()

	pub, err := rmq.NewPublisher(cfg.RMQURL, cfg.Queue)
	if err != nil {
		logx.L().Fatalw("rmq_publisher_init_error", "error", err)
	}
	defer pub.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	msrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux}
	go func() {
		logx.L().Infow("metrics_listen_start", "addr", msrv.Addr)
		if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.L().Errorw("metrics_server_error", "error", err)
		}
	}()

	w := worker.New(engine, cons, pub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logx.L().Errorw("worker_run_error", "error", err)
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = msrv.Shutdown(shCtx)

	logx.L().Infow("dispatch-worker stopped gracefully")
}
