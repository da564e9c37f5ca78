package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
)

// ErrNotPending is returned by CompleteDispatch when the row already left the
// pending status, i.e. another dispatch won.
var ErrNotPending = errors.New("broadcast is no longer pending")

type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

const broadcastColumns = `id, tenant_id, title, message, link_url, button_text, contact_tags,
	       scheduled_at, sent_at, status, total_sent, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBroadcast(row rowScanner) (broadcast.Broadcast, error) {
	var b broadcast.Broadcast
	var status string
	var tags []string
	err := row.Scan(
		&b.ID,
		&b.TenantID,
		&b.Title,
		&b.Message,
		&b.LinkURL,
		&b.ButtonText,
		pq.Array(&tags),
		&b.ScheduledAt,
		&b.SentAt,
		&status,
		&b.TotalSent,
		&b.CreatedAt,
	)
	if err != nil {
		return broadcast.Broadcast{}, err
	}
	if tags == nil {
		tags = []string{}
	}
	b.ContactTags = tags
	b.Status = broadcast.Status(status)
	return b, nil
}

func (s *Store) CreateBroadcast(ctx context.Context, b *broadcast.Broadcast) error {
	tags := b.ContactTags
	if tags == nil {
		tags = []string{}
	}
	return s.DB.QueryRowContext(ctx, `
		INSERT INTO broadcasts (tenant_id, title, message, link_url, button_text, contact_tags,
		                        scheduled_at, status, total_sent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at
	`, b.TenantID, b.Title, b.Message, b.LinkURL, b.ButtonText, pq.Array(tags),
		b.ScheduledAt, string(b.Status), b.TotalSent,
	).Scan(&b.ID, &b.CreatedAt)
}

func (s *Store) GetBroadcast(ctx context.Context, id int64) (*broadcast.Broadcast, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+broadcastColumns+`
		FROM broadcasts
		WHERE id = $1
	`, id)
	b, err := scanBroadcast(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, broadcast.NewBroadcastNotFound(id)
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) ListBroadcasts(ctx context.Context, tenantID int64, f broadcast.ListFilter) ([]broadcast.Broadcast, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT ` + broadcastColumns + `
		FROM broadcasts
		WHERE tenant_id = $1`)
	args := []any{tenantID}
	if f.Status != "" {
		args = append(args, string(f.Status))
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	args = append(args, f.Limit, f.Offset)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return s.queryBroadcasts(ctx, sb.String(), args...)
}

// ListScheduled returns pending broadcasts due at or before the given time,
// earliest first.
func (s *Store) ListScheduled(ctx context.Context, before time.Time) ([]broadcast.Broadcast, error) {
	return s.queryBroadcasts(ctx, `
		SELECT `+broadcastColumns+`
		FROM broadcasts
		WHERE status = 'pending'
		  AND scheduled_at IS NOT NULL
		  AND scheduled_at <= $1
		ORDER BY scheduled_at ASC, id ASC
	`, before.UTC())
}

func (s *Store) queryBroadcasts(ctx context.Context, query string, args ...any) ([]broadcast.Broadcast, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []broadcast.Broadcast{}
	for rows.Next() {
		b, err := scanBroadcast(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBroadcast writes the editable fields and the status of a broadcast
// owned by b.TenantID, provided its stored status is still prev. A status
// that moved on since it was read yields a StateError.
func (s *Store) UpdateBroadcast(ctx context.Context, b *broadcast.Broadcast, prev broadcast.Status) error {
	tags := b.ContactTags
	if tags == nil {
		tags = []string{}
	}
	res, err := s.DB.ExecContext(ctx, `
		UPDATE broadcasts
		   SET title=$1, message=$2, link_url=$3, button_text=$4, contact_tags=$5,
		       scheduled_at=$6, status=$7
		 WHERE id=$8 AND tenant_id=$9 AND status=$10
	`, b.Title, b.Message, b.LinkURL, b.ButtonText, pq.Array(tags),
		b.ScheduledAt, string(b.Status), b.ID, b.TenantID, string(prev))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var cur string
	err = s.DB.QueryRowContext(ctx, `
		SELECT status FROM broadcasts WHERE id=$1 AND tenant_id=$2
	`, b.ID, b.TenantID).Scan(&cur)
	if errors.Is(err, sql.ErrNoRows) {
		return broadcast.NewBroadcastNotFound(b.ID)
	}
	if err != nil {
		return err
	}
	return &broadcast.StateError{Op: "update", Status: broadcast.Status(cur), Reason: "status changed concurrently"}
}

// CompleteDispatch persists status, sent_at and total_sent in one statement.
// The status guard makes a second completion for the same id a no-op that
// reports ErrNotPending.
func (s *Store) CompleteDispatch(ctx context.Context, b *broadcast.Broadcast) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE broadcasts
		   SET status=$1, sent_at=$2, total_sent=$3
		 WHERE id=$4 AND status='pending'
	`, string(b.Status), b.SentAt, b.TotalSent, b.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrNotPending)
}

func (s *Store) DeleteBroadcast(ctx context.Context, tenantID, id int64) error {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM broadcasts WHERE id=$1 AND tenant_id=$2
	`, id, tenantID)
	if err != nil {
		return err
	}
	return expectOneRow(res, broadcast.NewBroadcastNotFound(id))
}

func (s *Store) GetStatistics(ctx context.Context, tenantID int64) (broadcast.Statistics, error) {
	var st broadcast.Statistics
	err := s.DB.QueryRowContext(ctx, `
		SELECT
		  COUNT(*) FILTER (WHERE status='pending')   AS pending,
		  COUNT(*) FILTER (WHERE status='sent')      AS sent,
		  COUNT(*) FILTER (WHERE status='failed')    AS failed,
		  COUNT(*) FILTER (WHERE status='cancelled') AS cancelled,
		  COALESCE(SUM(total_sent), 0)               AS total_messages_sent
		FROM broadcasts
		WHERE tenant_id = $1
	`, tenantID).Scan(&st.Pending, &st.Sent, &st.Failed, &st.Cancelled, &st.TotalMessagesSent)
	if err != nil {
		return broadcast.Statistics{}, err
	}
	st.Total = st.Pending + st.Sent + st.Failed + st.Cancelled
	return st, nil
}

func expectOneRow(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return none
	}
	return nil
}
