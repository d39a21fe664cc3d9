package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/core/domain"
)

type chanNotifier struct {
	delivered chan domain.Lead
	err       error
}

func (n *chanNotifier) Notify(ctx context.Context, lead domain.Lead) error {
	n.delivered <- lead
	return n.err
}

type stubDeduper struct {
	isDupFn func(ctx context.Context, tenant, email string) (bool, error)
	marked  chan string
}

func (d *stubDeduper) IsDuplicate(ctx context.Context, tenant, email string) (bool, error) {
	if d.isDupFn != nil {
		return d.isDupFn(ctx, tenant, email)
	}
	return false, nil
}

func (d *stubDeduper) Mark(ctx context.Context, tenant, email string) error {
	if d.marked != nil {
		d.marked <- tenant + "/" + email
	}
	return nil
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		panic("unreachable")
	}
}

func TestDispatcher_DeliversLead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &chanNotifier{delivered: make(chan domain.Lead, 1)}
	dedup := &stubDeduper{marked: make(chan string, 1)}
	d := NewDispatcher(2, notifier, dedup, zerolog.Nop())
	d.Start(ctx)

	d.Enqueue(domain.Lead{ID: "A1", Tenant: "acme", Email: "j@x.io"})

	got := waitFor(t, notifier.delivered)
	if got.ID != "A1" || got.Tenant != "acme" {
		t.Fatalf("unexpected lead: %+v", got)
	}
	if mark := waitFor(t, dedup.marked); mark != "acme/j@x.io" {
		t.Fatalf("unexpected dedup mark: %q", mark)
	}
}

func TestDispatcher_SkipsDuplicates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &chanNotifier{delivered: make(chan domain.Lead, 1)}
	checked := make(chan struct{}, 1)
	dedup := &stubDeduper{
		isDupFn: func(ctx context.Context, tenant, email string) (bool, error) {
			checked <- struct{}{}
			return true, nil
		},
	}
	d := NewDispatcher(1, notifier, dedup, zerolog.Nop())
	d.Start(ctx)

	d.Enqueue(domain.Lead{ID: "A1", Tenant: "acme", Email: "j@x.io"})

	waitFor(t, checked)
	select {
	case lead := <-notifier.delivered:
		t.Fatalf("duplicate was delivered: %+v", lead)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcher_NotifiesOnDedupError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &chanNotifier{delivered: make(chan domain.Lead, 1)}
	dedup := &stubDeduper{
		isDupFn: func(ctx context.Context, tenant, email string) (bool, error) {
			return false, errors.New("redis down")
		},
	}
	d := NewDispatcher(1, notifier, dedup, zerolog.Nop())
	d.Start(ctx)

	// A broken dedup store must not lose notifications.
	d.Enqueue(domain.Lead{ID: "A1", Tenant: "acme", Email: "j@x.io"})
	waitFor(t, notifier.delivered)
}

func TestDispatcher_FailedDeliveryNotMarked(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &chanNotifier{delivered: make(chan domain.Lead, 1), err: errors.New("webhook 500")}
	dedup := &stubDeduper{marked: make(chan string, 1)}
	d := NewDispatcher(1, notifier, dedup, zerolog.Nop())
	d.Start(ctx)

	d.Enqueue(domain.Lead{ID: "A1", Tenant: "acme", Email: "j@x.io"})

	waitFor(t, notifier.delivered)
	select {
	case mark := <-dedup.marked:
		t.Fatalf("failed delivery must not be marked, got %q", mark)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcher_ShardIsStablePerTenant(t *testing.T) {
	d := NewDispatcher(4, &chanNotifier{delivered: make(chan domain.Lead, 1)}, nil, zerolog.Nop())
	first := d.shardIndex("acme")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("acme"); got != first {
			t.Fatalf("shard moved: %d then %d", first, got)
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("shard out of range: %d", first)
	}
}

func TestDispatcher_WorkerCountFloor(t *testing.T) {
	d := NewDispatcher(0, &chanNotifier{delivered: make(chan domain.Lead, 1)}, nil, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("workers = %d, want %d", len(d.workers), defaultWorkers)
	}
}
