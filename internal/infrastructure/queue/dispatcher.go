package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	enqueueTimeout = 2 * time.Second
)

// SaleRecorder attributes a referral sale to its affiliate.
type SaleRecorder interface {
	RecordReferralSale(ctx context.Context, ev ports.CommissionEvent) error
}

// Dispatcher routes commission events to a fixed set of workers using
// consistent hashing on the referral code, so that the sales of one affiliate
// are recorded in order.
type Dispatcher struct {
	workers  []chan ports.CommissionEvent
	recorder SaleRecorder
	log      zerolog.Logger
	wait     time.Duration
	dropped  atomic.Uint64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder SaleRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.CommissionEvent, numWorkers),
		recorder: recorder,
		log:      log,
		wait:     enqueueTimeout,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.CommissionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Shutdown has closed
// their queue and it is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its referral code.
// When that worker's queue is full it waits up to enqueueTimeout for room.
// Events that still do not fit, and events enqueued after Shutdown, are
// logged and dropped.
func (d *Dispatcher) Enqueue(ev ports.CommissionEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(ev, "commission dispatcher closed, dropping event")
		return
	}

	ch := d.workers[d.shardIndex(ev.ReferralCode)]
	select {
	case ch <- ev:
		return
	default:
	}

	timer := time.NewTimer(d.wait)
	defer timer.Stop()
	select {
	case ch <- ev:
	case <-timer.C:
		d.drop(ev, "commission queue full, dropping event")
	}
}

// Dropped reports how many events were discarded by Enqueue.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

func (d *Dispatcher) drop(ev ports.CommissionEvent, msg string) {
	d.dropped.Add(1)
	d.log.Error().
		Str("referral_code", ev.ReferralCode).
		Str("purchase_id", ev.PurchaseID).
		Msg(msg)
}

// Shutdown stops accepting events and waits until the queued ones are
// recorded or ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a referral code deterministically to a worker index.
func (d *Dispatcher) shardIndex(code string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(code))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.CommissionEvent) {
	defer d.wg.Done()
	for ev := range ch {
		// Recording outlives the request that placed the order.
		if err := d.recorder.RecordReferralSale(context.WithoutCancel(ctx), ev); err != nil {
			d.log.Error().Err(err).
				Str("referral_code", ev.ReferralCode).
				Str("purchase_id", ev.PurchaseID).
				Int("worker_id", id).
				Msg("commission recording failed")
		}
	}
}
