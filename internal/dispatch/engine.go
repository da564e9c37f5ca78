package dispatch

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
)

type BroadcastStore interface {
	CreateBroadcast(ctx context.Context, b *broadcast.Broadcast) error
	GetBroadcast(ctx context.Context, id int64) (*broadcast.Broadcast, error)
	ListBroadcasts(ctx context.Context, tenantID int64, f broadcast.ListFilter) ([]broadcast.Broadcast, error)
	UpdateBroadcast(ctx context.Context, b *broadcast.Broadcast, prev broadcast.Status) error
	CompleteDispatch(ctx context.Context, b *broadcast.Broadcast) error
	DeleteBroadcast(ctx context.Context, tenantID, id int64) error
	GetStatistics(ctx context.Context, tenantID int64) (broadcast.Statistics, error)
}

type ContactDirectory interface {
	ListContacts(ctx context.Context, tenantID int64, page broadcast.Page) ([]broadcast.Contact, error)
	ListContactsByTags(ctx context.Context, tenantID int64, tags []string) ([]broadcast.Contact, error)
}

type TenantDirectory interface {
	GetTenant(ctx context.Context, id int64) (*broadcast.Tenant, error)
}

// Provider delivers one message to one phone number.
type Provider interface {
	SendText(ctx context.Context, to, body string, creds broadcast.Credentials) (string, error)
	SendInteractive(ctx context.Context, to, body, buttonText, url string, creds broadcast.Credentials) (string, error)
}

type Options struct {
	// Concurrency is the number of recipients sent to in parallel.
	Concurrency int
	// PageSize is the contact page size used when a broadcast targets everyone.
	PageSize int
	// SendTimeout bounds a single provider call. Zero leaves it to the provider.
	SendTimeout time.Duration

	PersistAttempts int
	PersistBackoff  time.Duration

	Now func() time.Time
}

func (o *Options) defaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.PageSize <= 0 {
		o.PageSize = 500
	}
	if o.PersistAttempts <= 0 {
		o.PersistAttempts = 3
	}
	if o.PersistBackoff <= 0 {
		o.PersistBackoff = 200 * time.Millisecond
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Engine owns every broadcast operation: the lifecycle, dispatch and
// statistics.
type Engine struct {
	store    BroadcastStore
	contacts ContactDirectory
	tenants  TenantDirectory
	provider Provider
	claimer  Claimer
	opts     Options
}

func New(store BroadcastStore, contacts ContactDirectory, tenants TenantDirectory, provider Provider, claimer Claimer, opts Options) *Engine {
	opts.defaults()
	if claimer == nil {
		claimer = NewMemoryClaimer()
	}
	return &Engine{
		store:    store,
		contacts: contacts,
		tenants:  tenants,
		provider: provider,
		claimer:  claimer,
		opts:     opts,
	}
}

func (e *Engine) now() time.Time { return e.opts.Now().UTC() }

// load fetches a broadcast and hides it from other tenants.
func (e *Engine) load(ctx context.Context, tenantID, id int64) (*broadcast.Broadcast, error) {
	b, err := e.store.GetBroadcast(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.TenantID != tenantID {
		return nil, broadcast.NewBroadcastNotFound(id)
	}
	return b, nil
}
