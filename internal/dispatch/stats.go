package dispatch

import (
	"context"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
)

// Statistics counts a tenant's broadcasts per status and sums delivered
// messages. Every bucket is present, zero when empty.
func (e *Engine) Statistics(ctx context.Context, tenantID int64) (broadcast.Statistics, error) {
	return e.store.GetStatistics(ctx, tenantID)
}
