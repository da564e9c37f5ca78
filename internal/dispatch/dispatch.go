package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
	"github.com/igrejaconecta/broadcaster/internal/store"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
	"github.com/igrejaconecta/broadcaster/pkg/metrics"
)

// Dispatch sends a pending broadcast to its audience and records it as sent.
// Per-recipient provider failures are counted, not returned; a broadcast whose
// every send failed still ends up sent with a total of zero.
func (e *Engine) Dispatch(ctx context.Context, tenantID, broadcastID int64) (broadcast.DispatchResult, error) {
	start := time.Now()
	res, err := e.dispatch(ctx, tenantID, broadcastID)
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	metrics.DispatchesTotal.WithLabelValues(outcome(err)).Inc()
	return res, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, broadcast.ErrNotFound):
		return "not_found"
	case errors.Is(err, broadcast.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, broadcast.ErrMessagingNotConfigured):
		return "not_configured"
	case errors.Is(err, broadcast.ErrPersistence):
		return "persistence_error"
	default:
		return "error"
	}
}

func (e *Engine) dispatch(ctx context.Context, tenantID, broadcastID int64) (broadcast.DispatchResult, error) {
	b, err := e.load(ctx, tenantID, broadcastID)
	if err != nil {
		return broadcast.DispatchResult{}, err
	}
	if !b.CanBeSent() {
		return broadcast.DispatchResult{}, &broadcast.StateError{Op: "send", Status: b.Status}
	}

	tenant, err := e.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return broadcast.DispatchResult{}, err
	}
	if !tenant.MessagingConfigured() {
		return broadcast.DispatchResult{}, broadcast.ErrMessagingNotConfigured
	}

	release, err := e.claimer.Claim(ctx, broadcastID)
	if errors.Is(err, ErrAlreadyClaimed) {
		return broadcast.DispatchResult{}, &broadcast.StateError{Op: "send", Status: b.Status, Reason: ErrAlreadyClaimed.Error()}
	}
	if err != nil {
		return broadcast.DispatchResult{}, err
	}
	defer release()

	// A dispatch that finished between the first read and the claim has
	// already moved the row out of pending.
	b, err = e.load(ctx, tenantID, broadcastID)
	if err != nil {
		return broadcast.DispatchResult{}, err
	}
	if !b.CanBeSent() {
		return broadcast.DispatchResult{}, &broadcast.StateError{Op: "send", Status: b.Status}
	}

	recipients, err := e.audience(ctx, b)
	if err != nil {
		return broadcast.DispatchResult{}, fmt.Errorf("resolve audience: %w", err)
	}

	logx.L().Infow("dispatch_started",
		"tenant_id", tenantID, "broadcast_id", broadcastID,
		"recipients", len(recipients), "interactive", b.Interactive())

	success, failed := e.fanOut(ctx, b, tenant.Credentials, recipients)
	res := broadcast.DispatchResult{Success: success, Failed: failed, Total: len(recipients)}

	if err := b.SetTotalSent(success); err != nil {
		return res, err
	}
	b.MarkSent(e.now())

	if err := e.persist(ctx, b); err != nil {
		return res, err
	}

	logx.L().Infow("dispatch_completed",
		"tenant_id", tenantID, "broadcast_id", broadcastID,
		"success", res.Success, "failed", res.Failed, "total", res.Total)
	return res, nil
}

// audience resolves recipients: any-tag match when tags are set, otherwise
// every contact of the tenant, read page by page.
func (e *Engine) audience(ctx context.Context, b *broadcast.Broadcast) ([]broadcast.Contact, error) {
	if len(b.ContactTags) > 0 {
		return e.contacts.ListContactsByTags(ctx, b.TenantID, b.ContactTags)
	}

	var all []broadcast.Contact
	page := broadcast.Page{Limit: e.opts.PageSize}
	for {
		batch, err := e.contacts.ListContacts(ctx, b.TenantID, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < page.Limit {
			return all, nil
		}
		page.AfterID = batch[len(batch)-1].ID
	}
}

func (e *Engine) fanOut(ctx context.Context, b *broadcast.Broadcast, creds broadcast.Credentials, recipients []broadcast.Contact) (int, int) {
	var success, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for _, c := range recipients {
		c := c
		g.Go(func() error {
			if err := e.send(ctx, b, c.Phone, creds); err != nil {
				failed.Add(1)
				metrics.DispatchRecipientsTotal.WithLabelValues("failed").Inc()
				logx.L().Debugw("dispatch_recipient_failed",
					"broadcast_id", b.ID, "contact_id", c.ID, "err", err)
				return nil
			}
			success.Add(1)
			metrics.DispatchRecipientsTotal.WithLabelValues("success").Inc()
			return nil
		})
	}
	_ = g.Wait()

	return int(success.Load()), int(failed.Load())
}

func (e *Engine) send(ctx context.Context, b *broadcast.Broadcast, to string, creds broadcast.Credentials) error {
	if e.opts.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.SendTimeout)
		defer cancel()
	}

	var err error
	if b.Interactive() {
		_, err = e.provider.SendInteractive(ctx, to, b.Message, *b.ButtonText, *b.LinkURL, creds)
	} else {
		_, err = e.provider.SendText(ctx, to, b.Message, creds)
	}
	return err
}

// persist writes the final state. Messages are already out at this point, so
// the write ignores caller cancellation and is retried before giving up.
func (e *Engine) persist(ctx context.Context, b *broadcast.Broadcast) error {
	ctx = context.WithoutCancel(ctx)

	var err error
	for attempt := 1; attempt <= e.opts.PersistAttempts; attempt++ {
		err = e.store.CompleteDispatch(ctx, b)
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrNotPending) {
			logx.L().Warnw("dispatch_state_conflict",
				"tenant_id", b.TenantID, "broadcast_id", b.ID, "total_sent", b.TotalSent)
			return &broadcast.StateError{Op: "send", Status: b.Status, Reason: "status changed during dispatch"}
		}
		if attempt < e.opts.PersistAttempts {
			time.Sleep(time.Duration(attempt) * e.opts.PersistBackoff)
		}
	}

	metrics.DispatchReconcileRequired.Inc()
	logx.L().Errorw("dispatch_reconcile_required",
		"tenant_id", b.TenantID, "broadcast_id", b.ID,
		"total_sent", b.TotalSent, "sent_at", b.SentAt, "err", err)
	return fmt.Errorf("%w: complete dispatch %d: %w", broadcast.ErrPersistence, b.ID, err)
}
