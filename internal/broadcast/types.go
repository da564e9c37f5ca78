package broadcast

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus accepts the lowercase wire form and the uppercase constant names.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", invalidArgument("unknown status %q", raw)
	}
	return s, nil
}

// Broadcast is a message campaign sent to all or a tag-filtered subset of a
// tenant's contacts.
type Broadcast struct {
	ID          int64      `json:"id"`
	TenantID    int64      `json:"tenant_id"`
	Title       *string    `json:"title,omitempty"`
	Message     string     `json:"message"`
	LinkURL     *string    `json:"link_url,omitempty"`
	ButtonText  *string    `json:"button_text,omitempty"`
	ContactTags []string   `json:"contact_tags"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	Status      Status     `json:"status"`
	TotalSent   int        `json:"total_sent"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Interactive reports whether the broadcast goes out as a button+link message.
func (b *Broadcast) Interactive() bool {
	return b.LinkURL != nil && *b.LinkURL != "" && b.ButtonText != nil && *b.ButtonText != ""
}

type Contact struct {
	ID       int64
	TenantID int64
	Name     *string
	Phone    string
	Tags     []string
}

// Credentials are the provider values stored per tenant. They are passed to
// the messaging client untouched.
type Credentials struct {
	PhoneNumberID string
	AccessToken   string
}

type Tenant struct {
	ID          int64
	Name        string
	Credentials Credentials
}

func (t *Tenant) MessagingConfigured() bool {
	return t.Credentials.PhoneNumberID != "" && t.Credentials.AccessToken != ""
}

type DispatchResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

type Statistics struct {
	Total             int `json:"total"`
	Pending           int `json:"pending"`
	Sent              int `json:"sent"`
	Failed            int `json:"failed"`
	Cancelled         int `json:"cancelled"`
	TotalMessagesSent int `json:"total_messages_sent"`
}

type CreateBroadcastReq struct {
	Title       *string    `json:"title"        binding:"omitempty,max=100"`
	Message     string     `json:"message"      binding:"required"`
	LinkURL     *string    `json:"link_url"     binding:"omitempty,url"`
	ButtonText  *string    `json:"button_text"  binding:"omitempty,max=50"`
	ContactTags []string   `json:"contact_tags" binding:"omitempty,dive,required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type UpdateBroadcastReq struct {
	Title       *string    `json:"title"        binding:"omitempty,max=100"`
	Message     *string    `json:"message"`
	LinkURL     *string    `json:"link_url"     binding:"omitempty,url"`
	ButtonText  *string    `json:"button_text"  binding:"omitempty,max=50"`
	ContactTags []string   `json:"contact_tags" binding:"omitempty,dive,required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type ScheduleBroadcastReq struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

type ListBroadcastsResp struct {
	Items  []Broadcast `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ListFilter narrows a tenant's broadcast listing. Zero Status means any.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Page is keyset pagination over contact ids: rows with id > AfterID, at most
// Limit of them.
type Page struct {
	AfterID int64
	Limit   int
}
