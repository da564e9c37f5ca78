package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
)

// Contacts and tenants are owned by other services; this package only reads
// them.

func scanContacts(rows *sql.Rows) ([]broadcast.Contact, error) {
	defer rows.Close()

	out := []broadcast.Contact{}
	for rows.Next() {
		var c broadcast.Contact
		var tags []string
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Phone, pq.Array(&tags)); err != nil {
			return nil, err
		}
		c.Tags = tags
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListContacts(ctx context.Context, tenantID int64, page broadcast.Page) ([]broadcast.Contact, error) {
	if page.Limit <= 0 {
		page.Limit = 500
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, tenant_id, name, phone, tags
		FROM contacts
		WHERE tenant_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3
	`, tenantID, page.AfterID, page.Limit)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

// ListContactsByTags returns contacts holding at least one of tags.
func (s *Store) ListContactsByTags(ctx context.Context, tenantID int64, tags []string) ([]broadcast.Contact, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, tenant_id, name, phone, tags
		FROM contacts
		WHERE tenant_id = $1 AND tags && $2
		ORDER BY id ASC
	`, tenantID, pq.Array(tags))
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

func (s *Store) GetTenant(ctx context.Context, id int64) (*broadcast.Tenant, error) {
	var t broadcast.Tenant
	var phoneID, token sql.NullString
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, whatsapp_phone_id, whatsapp_access_token
		FROM tenants
		WHERE id = $1 AND is_active
	`, id).Scan(&t.ID, &t.Name, &phoneID, &token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, broadcast.NewTenantNotFound(id)
		}
		return nil, err
	}
	t.Credentials = broadcast.Credentials{
		PhoneNumberID: phoneID.String,
		AccessToken:   token.String,
	}
	return &t, nil
}
