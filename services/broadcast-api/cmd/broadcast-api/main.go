package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/igrejaconecta/broadcaster/internal/bootstrap"
	"github.com/igrejaconecta/broadcaster/migrations"
	"github.com/igrejaconecta/broadcaster/pkg/config"
	"github.com/igrejaconecta/broadcaster/pkg/db"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
	"github.com/igrejaconecta/broadcaster/services/broadcast-api/server"
)

func main() {
	_ = godotenv.Load()

	logx.Init()
	defer logx.Sync()

	config.MustLoadAPI()
	cfg := config.API

	sqlDB, err := db.Open(cfg.DBDSN)
	if err != nil {
		logx.L().Fatalw("db_open_error", "error", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logx.L().Warnw("db_close_error", "error", err)
		} else {
			logx.L().Infow("db_closed")
		}
	}()

	if cfg.Migrate {
		mctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := migrations.Apply(mctx, sqlDB)
		cancel()
		if err != nil {
			logx.L().Fatalw("db_migrate_error", "error", err)
		}
		logx.L().Infow("db_migrated")
	}

	engine, closeEngine, err := bootstrap.Engine(sqlDB, cfg.Dispatch, cfg.WhatsApp, cfg.Redis)
	if err != nil {
		logx.L().Fatalw("engine_init_error", "error", err)
	}
	defer closeEngine()

	h := server.NewHandlers(engine)
	srv := server.NewHTTPServer(":"+cfg.Port, h)

	go func() {
		logx.L().Infow("api_listen_start", "addr", ":"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.L().Fatalw("http_server_error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logx.L().Infow("signal_received", "signal", sig.String())

	// in-flight sends are detached from the request; give them time to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logx.L().Errorw("server_shutdown_error", "error", err)
	} else {
		logx.L().Infow("server_shutdown_success")
	}

	logx.L().Infow("broadcast-api stopped gracefully")
}
