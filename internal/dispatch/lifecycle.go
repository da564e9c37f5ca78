package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
)

func (e *Engine) Create(ctx context.Context, tenantID int64, req broadcast.CreateBroadcastReq) (*broadcast.Broadcast, error) {
	if _, err := e.tenants.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	b := &broadcast.Broadcast{
		TenantID:    tenantID,
		Title:       blankToNil(req.Title),
		Message:     strings.TrimSpace(req.Message),
		LinkURL:     blankToNil(req.LinkURL),
		ButtonText:  blankToNil(req.ButtonText),
		ContactTags: normalizeTags(req.ContactTags),
		Status:      broadcast.StatusPending,
	}
	if req.ScheduledAt != nil {
		if err := b.Schedule(*req.ScheduledAt, e.now()); err != nil {
			return nil, err
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := e.store.CreateBroadcast(ctx, b); err != nil {
		return nil, err
	}
	logx.L().Infow("broadcast_created", "tenant_id", tenantID, "broadcast_id", b.ID, "scheduled", b.IsScheduled())
	return b, nil
}

func (e *Engine) Get(ctx context.Context, tenantID, id int64) (*broadcast.Broadcast, error) {
	return e.load(ctx, tenantID, id)
}

func (e *Engine) List(ctx context.Context, tenantID int64, f broadcast.ListFilter) ([]broadcast.Broadcast, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, broadcast.InvalidArgument("unknown status %q", f.Status)
	}
	return e.store.ListBroadcasts(ctx, tenantID, f)
}

// Update edits a pending broadcast. Nil fields are left as they are; an empty
// string clears an optional field.
func (e *Engine) Update(ctx context.Context, tenantID, id int64, req broadcast.UpdateBroadcastReq) (*broadcast.Broadcast, error) {
	b, err := e.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != broadcast.StatusPending {
		return nil, &broadcast.StateError{Op: "update", Status: b.Status}
	}
	prev := b.Status

	if req.Title != nil {
		b.Title = blankToNil(req.Title)
	}
	if req.Message != nil {
		b.Message = strings.TrimSpace(*req.Message)
	}
	if req.LinkURL != nil {
		b.LinkURL = blankToNil(req.LinkURL)
	}
	if req.ButtonText != nil {
		b.ButtonText = blankToNil(req.ButtonText)
	}
	if req.ContactTags != nil {
		b.ContactTags = normalizeTags(req.ContactTags)
	}
	if req.ScheduledAt != nil {
		if err := b.Schedule(*req.ScheduledAt, e.now()); err != nil {
			return nil, err
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := e.store.UpdateBroadcast(ctx, b, prev); err != nil {
		return nil, conflict("update", err)
	}
	logx.L().Infow("broadcast_updated", "tenant_id", tenantID, "broadcast_id", id)
	return b, nil
}

func (e *Engine) Schedule(ctx context.Context, tenantID, id int64, at time.Time) (*broadcast.Broadcast, error) {
	b, err := e.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	prev := b.Status
	if err := b.Schedule(at, e.now()); err != nil {
		return nil, err
	}
	if err := e.store.UpdateBroadcast(ctx, b, prev); err != nil {
		return nil, conflict("schedule", err)
	}
	logx.L().Infow("broadcast_scheduled", "tenant_id", tenantID, "broadcast_id", id, "scheduled_at", b.ScheduledAt)
	return b, nil
}

func (e *Engine) Cancel(ctx context.Context, tenantID, id int64) (*broadcast.Broadcast, error) {
	b, err := e.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	prev := b.Status
	if err := b.Cancel(); err != nil {
		return nil, err
	}
	if err := e.store.UpdateBroadcast(ctx, b, prev); err != nil {
		return nil, conflict("cancel", err)
	}
	logx.L().Infow("broadcast_cancelled", "tenant_id", tenantID, "broadcast_id", id)
	return b, nil
}

func (e *Engine) Delete(ctx context.Context, tenantID, id int64) error {
	if _, err := e.load(ctx, tenantID, id); err != nil {
		return err
	}
	if err := e.store.DeleteBroadcast(ctx, tenantID, id); err != nil {
		return err
	}
	logx.L().Infow("broadcast_deleted", "tenant_id", tenantID, "broadcast_id", id)
	return nil
}

// conflict names op on a StateError from a guarded write and logs it.
func conflict(op string, err error) error {
	var se *broadcast.StateError
	if !errors.As(err, &se) {
		return err
	}
	logx.L().Warnw("broadcast_state_conflict", "op", op, "status", se.Status)
	return &broadcast.StateError{Op: op, Status: se.Status, Reason: se.Reason}
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// normalizeTags trims, drops blanks and removes duplicates, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
