package broadcast

import (
	"strings"
	"time"
)

// Validate checks the invariants every stored broadcast must hold.
func (b *Broadcast) Validate() error {
	if b.TenantID <= 0 {
		return invalidArgument("tenant id is required")
	}
	if strings.TrimSpace(b.Message) == "" {
		return invalidArgument("message is required")
	}
	if b.TotalSent < 0 {
		return invalidArgument("total sent cannot be negative")
	}
	if !b.Status.IsValid() {
		return invalidArgument("unknown status %q", b.Status)
	}
	return nil
}

// Schedule sets the dispatch time and (re)arms the broadcast as pending.
// at must be strictly after now. A sent broadcast cannot be re-armed.
func (b *Broadcast) Schedule(at, now time.Time) error {
	if b.Status == StatusSent {
		return &StateError{Op: "schedule", Status: b.Status, Reason: "already sent"}
	}
	if !at.After(now) {
		return invalidArgument("scheduled time must be in the future")
	}
	at = at.UTC()
	b.ScheduledAt = &at
	b.Status = StatusPending
	return nil
}

// MarkSent records a completed dispatch. The engine checks CanBeSent first.
func (b *Broadcast) MarkSent(now time.Time) {
	now = now.UTC()
	b.Status = StatusSent
	b.SentAt = &now
}

// MarkFailed records a dispatch that could not be carried out.
func (b *Broadcast) MarkFailed() {
	b.Status = StatusFailed
}

// Cancel moves any broadcast that was not sent to CANCELLED.
func (b *Broadcast) Cancel() error {
	if b.Status == StatusSent {
		return &StateError{Op: "cancel", Status: b.Status, Reason: "already sent"}
	}
	b.Status = StatusCancelled
	return nil
}

// SetTotalSent stores the number of successful sends; n must not be negative.
func (b *Broadcast) SetTotalSent(n int) error {
	if n < 0 {
		return invalidArgument("total sent cannot be negative")
	}
	b.TotalSent = n
	return nil
}

// IsScheduled reports a pending broadcast with a send time set.
func (b *Broadcast) IsScheduled() bool {
	return b.ScheduledAt != nil && b.Status == StatusPending
}

// CanBeSent only looks at the status; ScheduledAt is advisory for the
// scheduler and does not block an explicit dispatch.
func (b *Broadcast) CanBeSent() bool {
	return b.Status == StatusPending
}
