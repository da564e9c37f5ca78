package dispatch

import (
	"context"
	"errors"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
)

// CredentialChecker is implemented by providers able to verify a tenant's
// credentials without sending anything.
type CredentialChecker interface {
	ValidateCredentials(ctx context.Context, creds broadcast.Credentials) (bool, error)
}

var errCheckUnsupported = errors.New("provider cannot validate credentials")

// CheckMessaging asks the provider whether the tenant's stored credentials
// are accepted.
func (e *Engine) CheckMessaging(ctx context.Context, tenantID int64) (bool, error) {
	t, err := e.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	if !t.MessagingConfigured() {
		return false, broadcast.ErrMessagingNotConfigured
	}
	cc, ok := e.provider.(CredentialChecker)
	if !ok {
		return false, errCheckUnsupported
	}
	return cc.ValidateCredentials(ctx, t.Credentials)
}
