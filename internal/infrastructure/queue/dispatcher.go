package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/api/metrics"
	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Deduper suppresses repeat notifications for the same (tenant, email).
type Deduper interface {
	IsDuplicate(ctx context.Context, tenant, email string) (bool, error)
	Mark(ctx context.Context, tenant, email string) error
}

// Dispatcher relays captured leads to the outbound webhook on a fixed set of
// workers, sharded by tenant so one tenant's notifications stay ordered.
// Enqueue never blocks the capturing request: when a worker's buffer is full
// the notification is dropped and counted, not awaited.
type Dispatcher struct {
	workers  []chan domain.Lead
	notifier ports.LeadNotifier
	dedup    Deduper // optional
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
func NewDispatcher(numWorkers int, notifier ports.LeadNotifier, dedup Deduper, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.Lead, numWorkers),
		notifier: notifier,
		dedup:    dedup,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Lead, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a lead to the worker responsible for its tenant.
func (d *Dispatcher) Enqueue(lead domain.Lead) {
	select {
	case d.workers[d.shardIndex(lead.Tenant)] <- lead:
	default:
		metrics.NotifyDroppedTotal.Inc()
		d.log.Warn().Str("tenant", lead.Tenant).Msg("notify queue full, dropping")
	}
}

// shardIndex maps a tenant deterministically to a worker index.
func (d *Dispatcher) shardIndex(tenant string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tenant))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Lead) {
	for {
		select {
		case <-ctx.Done():
			return
		case lead, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, lead)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, lead domain.Lead) {
	if d.dedup != nil {
		isDup, err := d.dedup.IsDuplicate(ctx, lead.Tenant, lead.Email)
		if err != nil {
			d.log.Warn().Err(err).Str("tenant", lead.Tenant).Msg("notify dedup check failed, notifying anyway")
		} else if isDup {
			d.log.Debug().Str("tenant", lead.Tenant).Msg("duplicate notification skipped")
			return
		}
	}

	if err := d.notifier.Notify(ctx, lead); err != nil {
		metrics.NotifyErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("tenant", lead.Tenant).
			Int("worker_id", workerID).
			Msg("lead notification failed")
		return
	}

	if d.dedup != nil {
		if err := d.dedup.Mark(ctx, lead.Tenant, lead.Email); err != nil {
			d.log.Warn().Err(err).Str("tenant", lead.Tenant).Msg("failed to set notify dedup key")
		}
	}
}
