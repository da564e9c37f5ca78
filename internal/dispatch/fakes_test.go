package dispatch

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
	"github.com/igrejaconecta/broadcaster/internal/store"
)

// memStore is an in-memory BroadcastStore, ContactDirectory and
// TenantDirectory with the same guards as the SQL store.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	broadcasts map[int64]broadcast.Broadcast
	contacts   []broadcast.Contact
	tenants    map[int64]broadcast.Tenant
	completes  int

	// beforeUpdate runs ahead of UpdateBroadcast, outside the lock.
	beforeUpdate func()
}

func newMemStore() *memStore {
	return &memStore{
		nextID:     100,
		broadcasts: map[int64]broadcast.Broadcast{},
		tenants:    map[int64]broadcast.Tenant{},
	}
}

func (s *memStore) put(b broadcast.Broadcast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts[b.ID] = b
}

func (s *memStore) get(id int64) broadcast.Broadcast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broadcasts[id]
}

func (s *memStore) CreateBroadcast(_ context.Context, b *broadcast.Broadcast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	s.broadcasts[b.ID] = *b
	return nil
}

func (s *memStore) GetBroadcast(_ context.Context, id int64) (*broadcast.Broadcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.broadcasts[id]
	if !ok {
		return nil, broadcast.NewBroadcastNotFound(id)
	}
	b.ContactTags = slices.Clone(b.ContactTags)
	return &b, nil
}

func (s *memStore) ListBroadcasts(_ context.Context, tenantID int64, f broadcast.ListFilter) ([]broadcast.Broadcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []broadcast.Broadcast{}
	for _, b := range s.broadcasts {
		if b.TenantID == tenantID && (f.Status == "" || b.Status == f.Status) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) UpdateBroadcast(_ context.Context, b *broadcast.Broadcast, prev broadcast.Status) error {
	if s.beforeUpdate != nil {
		s.beforeUpdate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.broadcasts[b.ID]
	if !ok || cur.TenantID != b.TenantID {
		return broadcast.NewBroadcastNotFound(b.ID)
	}
	if cur.Status != prev {
		return &broadcast.StateError{Op: "update", Status: cur.Status, Reason: "status changed concurrently"}
	}
	s.broadcasts[b.ID] = *b
	return nil
}

func (s *memStore) CompleteDispatch(_ context.Context, b *broadcast.Broadcast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.broadcasts[b.ID]
	if !ok || cur.Status != broadcast.StatusPending {
		return store.ErrNotPending
	}
	cur.Status = b.Status
	cur.SentAt = b.SentAt
	cur.TotalSent = b.TotalSent
	s.broadcasts[b.ID] = cur
	s.completes++
	return nil
}

func (s *memStore) DeleteBroadcast(_ context.Context, tenantID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.broadcasts[id]
	if !ok || cur.TenantID != tenantID {
		return broadcast.NewBroadcastNotFound(id)
	}
	delete(s.broadcasts, id)
	return nil
}

func (s *memStore) GetStatistics(_ context.Context, tenantID int64) (broadcast.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st broadcast.Statistics
	for _, b := range s.broadcasts {
		if b.TenantID != tenantID {
			continue
		}
		switch b.Status {
		case broadcast.StatusPending:
			st.Pending++
		case broadcast.StatusSent:
			st.Sent++
		case broadcast.StatusFailed:
			st.Failed++
		case broadcast.StatusCancelled:
			st.Cancelled++
		}
		st.TotalMessagesSent += b.TotalSent
	}
	st.Total = st.Pending + st.Sent + st.Failed + st.Cancelled
	return st, nil
}

func (s *memStore) ListContacts(_ context.Context, tenantID int64, page broadcast.Page) ([]broadcast.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []broadcast.Contact{}
	for _, c := range s.contacts {
		if c.TenantID == tenantID && c.ID > page.AfterID {
			out = append(out, c)
			if len(out) == page.Limit {
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) ListContactsByTags(_ context.Context, tenantID int64, tags []string) ([]broadcast.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []broadcast.Contact{}
	for _, c := range s.contacts {
		if c.TenantID != tenantID {
			continue
		}
		for _, t := range c.Tags {
			if slices.Contains(tags, t) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) GetTenant(_ context.Context, id int64) (*broadcast.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, broadcast.NewTenantNotFound(id)
	}
	return &t, nil
}
