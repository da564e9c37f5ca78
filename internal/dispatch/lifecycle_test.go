package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
)

func TestCreate(t *testing.T) {
	f := newFixture(t, Options{})
	at := now.Add(2 * time.Hour)

	b, err := f.engine.Create(context.Background(), tenantID, broadcast.CreateBroadcastReq{
		Title:       strp("  "),
		Message:     "  Culto às 19h ",
		ButtonText:  strp("Assistir"),
		ContactTags: []string{"jovens", " jovens", "", "louvor"},
		ScheduledAt: &at,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if b.ID == 0 || b.Status != broadcast.StatusPending || !b.IsScheduled() {
		t.Fatalf("unexpected broadcast %+v", b)
	}
	if b.Title != nil || b.Message != "Culto às 19h" {
		t.Fatalf("fields not normalized: title=%v message=%q", b.Title, b.Message)
	}
	if len(b.ContactTags) != 2 || b.ContactTags[0] != "jovens" || b.ContactTags[1] != "louvor" {
		t.Fatalf("tags not normalized: %v", b.ContactTags)
	}
	if stored := f.store.get(b.ID); stored.Message != b.Message {
		t.Fatalf("not stored: %+v", stored)
	}
}

func TestCreate_Rejections(t *testing.T) {
	past := now.Add(-time.Minute)

	tests := []struct {
		name     string
		tenantID int64
		req      broadcast.CreateBroadcastReq
		want     error
	}{
		{"blank message", tenantID, broadcast.CreateBroadcastReq{Message: "   "}, broadcast.ErrInvalidArgument},
		{"past schedule", tenantID, broadcast.CreateBroadcastReq{Message: "x", ScheduledAt: &past}, broadcast.ErrInvalidArgument},
		{"present schedule", tenantID, broadcast.CreateBroadcastReq{Message: "x", ScheduledAt: &now}, broadcast.ErrInvalidArgument},
		{"unknown tenant", 42, broadcast.CreateBroadcastReq{Message: "x"}, broadcast.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			_, err := f.engine.Create(context.Background(), tt.tenantID, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
			if len(f.store.broadcasts) != 0 {
				t.Fatal("rejected broadcast was stored")
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, Options{})
	b := pendingBroadcast(1)
	b.LinkURL = strp("https://old.example")
	f.store.put(b)

	at := now.Add(time.Hour)
	got, err := f.engine.Update(context.Background(), tenantID, 1, broadcast.UpdateBroadcastReq{
		Message:     strp("Culto às 20h"),
		LinkURL:     strp(""),
		ContactTags: []string{"adultos"},
		ScheduledAt: &at,
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.Message != "Culto às 20h" || got.LinkURL != nil || got.ContactTags[0] != "adultos" {
		t.Fatalf("unexpected broadcast %+v", got)
	}
	if got.ScheduledAt == nil || !got.ScheduledAt.Equal(at) {
		t.Fatalf("schedule not applied: %v", got.ScheduledAt)
	}
}

func TestUpdate_OnlyPending(t *testing.T) {
	f := newFixture(t, Options{})
	b := pendingBroadcast(1)
	b.Status = broadcast.StatusSent
	f.store.put(b)

	_, err := f.engine.Update(context.Background(), tenantID, 1, broadcast.UpdateBroadcastReq{Message: strp("x")})
	if !errors.Is(err, broadcast.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestUpdate_BlankMessage(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.put(pendingBroadcast(1))

	_, err := f.engine.Update(context.Background(), tenantID, 1, broadcast.UpdateBroadcastReq{Message: strp(" ")})
	if !errors.Is(err, broadcast.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if got := f.store.get(1); got.Message != "Culto às 19h" {
		t.Fatalf("message overwritten: %q", got.Message)
	}
}

func TestSchedule_RearmsCancelled(t *testing.T) {
	f := newFixture(t, Options{})
	b := pendingBroadcast(1)
	b.Status = broadcast.StatusCancelled
	f.store.put(b)

	at := now.Add(time.Hour)
	got, err := f.engine.Schedule(context.Background(), tenantID, 1, at)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if got.Status != broadcast.StatusPending || f.store.get(1).Status != broadcast.StatusPending {
		t.Fatalf("want pending, got %s", got.Status)
	}
}

func TestSchedule_SentRejected(t *testing.T) {
	f := newFixture(t, Options{})
	b := pendingBroadcast(1)
	b.Status = broadcast.StatusSent
	f.store.put(b)

	_, err := f.engine.Schedule(context.Background(), tenantID, 1, now.Add(time.Hour))
	if !errors.Is(err, broadcast.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.put(pendingBroadcast(1))
	sent := pendingBroadcast(2)
	sent.Status = broadcast.StatusSent
	f.store.put(sent)

	if _, err := f.engine.Cancel(context.Background(), tenantID, 1); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if got := f.store.get(1); got.Status != broadcast.StatusCancelled {
		t.Fatalf("want cancelled, got %s", got.Status)
	}
	if _, err := f.engine.Cancel(context.Background(), tenantID, 2); !errors.Is(err, broadcast.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState for sent, got %v", err)
	}
}

func TestDelete_TenantScoped(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.put(pendingBroadcast(1))

	if err := f.engine.Delete(context.Background(), 99, 1); !errors.Is(err, broadcast.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := f.engine.Delete(context.Background(), tenantID, 1); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := f.engine.Get(context.Background(), tenantID, 1); !errors.Is(err, broadcast.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestList_StatusFilter(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.put(pendingBroadcast(1))
	sent := pendingBroadcast(2)
	sent.Status = broadcast.StatusSent
	f.store.put(sent)

	got, err := f.engine.List(context.Background(), tenantID, broadcast.ListFilter{Status: broadcast.StatusSent})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected list %+v", got)
	}

	_, err = f.engine.List(context.Background(), tenantID, broadcast.ListFilter{Status: "queued"})
	if !errors.Is(err, broadcast.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

type checkingProvider struct {
	Provider
	valid bool
}

func (p checkingProvider) ValidateCredentials(context.Context, broadcast.Credentials) (bool, error) {
	return p.valid, nil
}

func TestCheckMessaging(t *testing.T) {
	f := newFixture(t, Options{})
	e := New(f.store, f.store, f.store, checkingProvider{valid: true}, nil, Options{})

	ok, err := e.CheckMessaging(context.Background(), tenantID)
	if err != nil || !ok {
		t.Fatalf("want valid, ok=%v err=%v", ok, err)
	}

	f.store.tenants[tenantID] = broadcast.Tenant{ID: tenantID}
	if _, err := e.CheckMessaging(context.Background(), tenantID); !errors.Is(err, broadcast.ErrMessagingNotConfigured) {
		t.Fatalf("want ErrMessagingNotConfigured, got %v", err)
	}
}

func TestLifecycleWrite_LosesToConcurrentDispatch(t *testing.T) {
	ops := map[string]func(*fixture) (*broadcast.Broadcast, error){
		"cancel": func(f *fixture) (*broadcast.Broadcast, error) {
			return f.engine.Cancel(context.Background(), tenantID, 1)
		},
		"schedule": func(f *fixture) (*broadcast.Broadcast, error) {
			return f.engine.Schedule(context.Background(), tenantID, 1, now.Add(time.Hour))
		},
		"update": func(f *fixture) (*broadcast.Broadcast, error) {
			return f.engine.Update(context.Background(), tenantID, 1, broadcast.UpdateBroadcastReq{Message: strp("novo")})
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, Options{})
			f.addContacts(1)
			f.store.put(pendingBroadcast(1))
			f.provider.EXPECT().SendText(gomock.Any(), gomock.Any(), gomock.Any(), creds).Return("wamid", nil).Times(1)

			// a dispatch completes between the lifecycle read and its write
			f.store.beforeUpdate = func() {
				f.store.beforeUpdate = nil
				if _, err := f.engine.Dispatch(context.Background(), tenantID, 1); err != nil {
					t.Errorf("Dispatch() error: %v", err)
				}
			}

			_, err := op(f)
			var se *broadcast.StateError
			if !errors.As(err, &se) || se.Op != name || se.Status != broadcast.StatusSent {
				t.Fatalf("want %s StateError over sent, got %v", name, err)
			}
			if got := f.store.get(1); got.Status != broadcast.StatusSent || got.TotalSent != 1 {
				t.Fatalf("stored row overwritten: %s/%d", got.Status, got.TotalSent)
			}
		})
	}
}
