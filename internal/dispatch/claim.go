package dispatch

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/igrejaconecta/broadcaster/pkg/logx"
)

// ErrAlreadyClaimed is returned by a Claimer when another dispatch holds the
// broadcast.
var ErrAlreadyClaimed = errors.New("dispatch already in progress")

// Claimer grants at most one in-flight dispatch per broadcast id. The returned
// release func must be called once the dispatch is over.
type Claimer interface {
	Claim(ctx context.Context, broadcastID int64) (release func(), err error)
}

// MemoryClaimer serializes dispatches inside a single process.
type MemoryClaimer struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

func NewMemoryClaimer() *MemoryClaimer {
	return &MemoryClaimer{held: make(map[int64]struct{})}
}

func (c *MemoryClaimer) Claim(_ context.Context, broadcastID int64) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.held[broadcastID]; ok {
		return nil, ErrAlreadyClaimed
	}
	c.held[broadcastID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.held, broadcastID)
			c.mu.Unlock()
		})
	}, nil
}

// PgClaimer takes a session-level advisory lock keyed by the broadcast id on
// a dedicated connection. The lock lives as long as that connection, so a
// crashed holder frees it when Postgres drops the session.
type PgClaimer struct {
	db *sql.DB
}

func NewPgClaimer(db *sql.DB) *PgClaimer {
	return &PgClaimer{db: db}
}

func (c *PgClaimer) Claim(ctx context.Context, broadcastID int64) (func(), error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("claim broadcast %d: %w", broadcastID, err)
	}

	var ok bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, broadcastID).Scan(&ok); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("claim broadcast %d: %w", broadcastID, err)
	}
	if !ok {
		_ = conn.Close()
		return nil, ErrAlreadyClaimed
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, broadcastID); err != nil {
				// closing the session drops the lock anyway
				_ = conn.Raw(func(any) error { return driver.ErrBadConn })
				logx.L().Warnw("claim_unlock_error", "broadcast_id", broadcastID, "error", err)
			}
			_ = conn.Close()
		})
	}, nil
}

// Deletes the key only if it still carries our token, so an expired claim
// taken over by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisClaimer shares claims between the API, the worker and the scheduler.
// A held claim is extended every ttl/3; the TTL only bounds how long a crashed
// holder blocks the broadcast.
type RedisClaimer struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisClaimer(rdb *redis.Client, ttl time.Duration) *RedisClaimer {
	return &RedisClaimer{rdb: rdb, ttl: ttl, prefix: "broadcast:dispatch:"}
}

func (c *RedisClaimer) key(id int64) string {
	return fmt.Sprintf("%s%d", c.prefix, id)
}

func (c *RedisClaimer) Claim(ctx context.Context, broadcastID int64) (func(), error) {
	key := c.key(broadcastID)
	token := uuid.NewString()

	ok, err := c.rdb.SetNX(ctx, key, token, c.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("claim %s: %w", key, err)
	}
	if !ok {
		return nil, ErrAlreadyClaimed
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go c.renew(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, c.rdb, []string{key}, token).Err()
		})
	}, nil
}

func (c *RedisClaimer) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := c.ttl / 3
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			n, err := renewScript.Run(ctx, c.rdb, []string{key}, token, c.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				logx.L().Warnw("claim_renew_error", "key", key, "error", err)
				continue
			}
			if n == 0 {
				logx.L().Warnw("claim_lost", "key", key)
				return
			}
		}
	}
}
