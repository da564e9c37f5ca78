package broadcast

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify with errors.Is; the concrete types below carry
// details and unwrap to one of these.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidState           = errors.New("invalid state")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrMessagingNotConfigured = errors.New("whatsapp not configured for this tenant")
	ErrPersistence            = errors.New("persistence error")
)

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewBroadcastNotFound(id int64) error {
	return &NotFoundError{Resource: "broadcast", ID: id}
}

func NewTenantNotFound(id int64) error {
	return &NotFoundError{Resource: "tenant", ID: id}
}

// StateError reports an operation the current status does not allow.
type StateError struct {
	Op     string
	Status Status
	Reason string
}

func (e *StateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s broadcast with status %s: %s", e.Op, e.Status, e.Reason)
	}
	return fmt.Sprintf("cannot %s broadcast with status %s", e.Op, e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// InvalidArgument builds an ErrInvalidArgument error with a message.
func InvalidArgument(format string, args ...any) error {
	return invalidArgument(format, args...)
}
