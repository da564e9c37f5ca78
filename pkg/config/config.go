package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/igrejaconecta/broadcaster/pkg/logx"
)

type DispatchConfig struct {
	Concurrency int
	PageSize    int
	ClaimTTL    time.Duration
}

type WhatsAppConfig struct {
	BaseURL    string
	APIVersion string
	Timeout    time.Duration
	RatePerSec int
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

type APIConfig struct {
	Port     string
	DBDSN    string
	Migrate  bool
	Dispatch DispatchConfig
	WhatsApp WhatsAppConfig
	Redis    RedisConfig
}

type WorkerConfig struct {
	DBDSN       string
	RMQURL      string
	Queue       string
	MetricsPort string
	Dispatch    DispatchConfig
	WhatsApp    WhatsAppConfig
	Redis       RedisConfig
}

type SchedulerConfig struct {
	DBDSN       string
	RMQURL      string
	Queue       string
	MetricsPort string
	Spec        string
	MaxInflight int
	Dispatch    DispatchConfig
	WhatsApp    WhatsAppConfig
	Redis       RedisConfig
}

var (
	API       APIConfig
	Worker    WorkerConfig
	Scheduler SchedulerConfig
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func requireEnv(k string) (string, error) {
	v := os.Getenv(k)
	if v == "" {
		return "", fmt.Errorf("required env %s is not set", k)
	}
	return v, nil
}

func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for env %s: %q", k, v)
	}
	return n, nil
}

// loader collects every problem instead of stopping at the first one.
type loader struct {
	errs []error
}

func (l *loader) require(k string) string {
	v, err := requireEnv(k)
	if err != nil {
		l.errs = append(l.errs, err)
	}
	return v
}

func (l *loader) int(k string, def int) int {
	n, err := getenvInt(k, def)
	if err != nil {
		l.errs = append(l.errs, err)
	}
	return n
}

func (l *loader) positive(k string, def int) int {
	n, err := getenvInt(k, def)
	if err != nil {
		l.errs = append(l.errs, err)
		return def
	}
	if n <= 0 {
		l.errs = append(l.errs, fmt.Errorf("env %s must be > 0", k))
	}
	return n
}

func (l *loader) err() error { return errors.Join(l.errs...) }

func (l *loader) dispatch() DispatchConfig {
	return DispatchConfig{
		Concurrency: l.positive("DISPATCH_CONCURRENCY", 4),
		PageSize:    l.positive("DISPATCH_PAGE_SIZE", 500),
		ClaimTTL:    time.Duration(l.positive("CLAIM_TTL_SECONDS", 900)) * time.Second,
	}
}

func (l *loader) whatsapp() WhatsAppConfig {
	rate := l.int("WHATSAPP_RATE_PER_SEC", 0)
	if rate < 0 {
		l.errs = append(l.errs, errors.New("env WHATSAPP_RATE_PER_SEC must be >= 0"))
	}
	return WhatsAppConfig{
		BaseURL:    getenv("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
		APIVersion: getenv("WHATSAPP_API_VERSION", "v20.0"),
		Timeout:    time.Duration(l.positive("WHATSAPP_TIMEOUT_SECONDS", 30)) * time.Second,
		RatePerSec: rate,
	}
}

func (l *loader) redis() RedisConfig {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}
	}
	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       l.int("REDIS_DB", 0),
	}
}

func LoadAPI() (APIConfig, error) {
	var l loader
	cfg := APIConfig{
		Port:     getenv("PORT", "8080"),
		DBDSN:    l.require("DB_DSN"),
		Migrate:  getenv("DB_MIGRATE", "false") == "true",
		Dispatch: l.dispatch(),
		WhatsApp: l.whatsapp(),
		Redis:    l.redis(),
	}
	return cfg, l.err()
}

func LoadWorker() (WorkerConfig, error) {
	var l loader
	cfg := WorkerConfig{
		DBDSN:       l.require("DB_DSN"),
		RMQURL:      l.require("RMQ_URL"),
		Queue:       getenv("DISPATCH_QUEUE", "broadcast_dispatch"),
		MetricsPort: getenv("METRICS_PORT", "9091"),
		Dispatch:    l.dispatch(),
		WhatsApp:    l.whatsapp(),
		Redis:       l.redis(),
	}
	return cfg, l.err()
}

// LoadScheduler leaves RMQURL optional: without it the scheduler dispatches
// in-process.
func LoadScheduler() (SchedulerConfig, error) {
	var l loader
	cfg := SchedulerConfig{
		DBDSN:       l.require("DB_DSN"),
		RMQURL:      os.Getenv("RMQ_URL"),
		Queue:       getenv("DISPATCH_QUEUE", "broadcast_dispatch"),
		MetricsPort: getenv("METRICS_PORT", "9092"),
		Spec:        getenv("SCHEDULER_SPEC", "@every 1m"),
		MaxInflight: l.positive("SCHEDULER_MAX_INFLIGHT", 8),
		Dispatch:    l.dispatch(),
		WhatsApp:    l.whatsapp(),
		Redis:       l.redis(),
	}
	return cfg, l.err()
}

func MustLoadAPI() {
	cfg, err := LoadAPI()
	if err != nil {
		logx.L().Fatalw("config_error", "error", err)
	}
	API = cfg
}

func MustLoadWorker() {
	cfg, err := LoadWorker()
	if err != nil {
		logx.L().Fatalw("config_error", "error", err)
	}
	Worker = cfg
}

func MustLoadScheduler() {
	cfg, err := LoadScheduler()
	if err != nil {
		logx.L().Fatalw("config_error", "error", err)
	}
	Scheduler = cfg
}
