package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/api/metrics"
	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/core/ports"
)

const (
	defaultWorkers = 4
	defaultBuffer  = 256
	defaultTimeout = 5 * time.Second
)

// Options tunes a Dispatcher. Zero values fall back to defaults. Buffer sizes
// each worker's pending set; it is a hint, not a cap.
type Options struct {
	Workers      int
	Buffer       int
	WriteTimeout time.Duration
}

// shard holds the latest unwritten snapshot per vehicle for one worker.
// order lists vehicle numbers in the sequence they first became pending.
type shard struct {
	mu      sync.Mutex
	pending map[string]domain.VehicleState
	order   []string
	wake    chan struct{}
}

func newShard(size int) *shard {
	return &shard{
		pending: make(map[string]domain.VehicleState, size),
		order:   make([]string, 0, size),
		wake:    make(chan struct{}, 1),
	}
}

// put records state as the newest pending snapshot for its vehicle and
// reports whether an older unwritten one was replaced.
func (s *shard) put(state domain.VehicleState) (coalesced bool, depth int) {
	s.mu.Lock()
	if _, ok := s.pending[state.VehicleNumber]; ok {
		coalesced = true
	} else {
		s.order = append(s.order, state.VehicleNumber)
	}
	s.pending[state.VehicleNumber] = state
	depth = len(s.order)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return coalesced, depth
}

// next pops the oldest pending vehicle.
func (s *shard) next() (domain.VehicleState, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return domain.VehicleState{}, 0, false
	}
	id := s.order[0]
	s.order = s.order[1:]
	state := s.pending[id]
	delete(s.pending, id)
	return state, len(s.order), true
}

// Dispatcher persists vehicle snapshots to the durable store off the
// ingestion path. Snapshots are routed to a fixed set of workers by hashing
// the vehicle number, so writes for one vehicle are applied in order. While a
// vehicle waits for its worker only its newest snapshot is kept, so the store
// always converges on the latest state without ever blocking ingestion.
type Dispatcher struct {
	shards  []*shard
	repo    ports.VehicleRepository
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher writing to repo.
func NewDispatcher(repo ports.VehicleRepository, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultTimeout
	}
	d := &Dispatcher{
		shards:  make([]*shard, opts.Workers),
		repo:    repo,
		timeout: opts.WriteTimeout,
		log:     log.With().Str("component", "writethrough").Logger(),
		done:    make(chan struct{}),
	}
	for i := range d.shards {
		d.shards[i] = newShard(opts.Buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or, after Close, once their pending set is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, sh := range d.shards {
		d.wg.Add(1)
		go d.runWorker(ctx, i, sh)
	}
}

// Enqueue hands a snapshot to the worker responsible for its vehicle.
// It never blocks. A snapshot still waiting for its worker is replaced.
func (d *Dispatcher) Enqueue(state domain.VehicleState) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	idx := d.shardIndex(state.VehicleNumber)
	coalesced, depth := d.shards[idx].put(state)
	metrics.WriteQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(depth))
	if coalesced {
		metrics.WriteCoalescedTotal.Inc()
	}
}

// Close stops accepting snapshots. Pending snapshots are still written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.done)
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// shardIndex maps a vehicle number deterministically to a worker index.
func (d *Dispatcher) shardIndex(vehicleNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(vehicleNumber))
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, sh *shard) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		if ctx.Err() != nil {
			return
		}
		if state, depth, ok := sh.next(); ok {
			metrics.WriteQueueDepth.WithLabelValues(label).Set(float64(depth))
			d.write(ctx, id, state)
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-sh.wake:
		case <-d.done:
			d.drain(ctx, id, sh)
			return
		}
	}
}

// drain writes whatever is still pending once the dispatcher is closed.
func (d *Dispatcher) drain(ctx context.Context, id int, sh *shard) {
	for ctx.Err() == nil {
		state, _, ok := sh.next()
		if !ok {
			return
		}
		d.write(ctx, id, state)
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, state domain.VehicleState) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.repo.Upsert(ctx, state)
	metrics.WriteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WriteErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("vehicle_number", state.VehicleNumber).
			Int("worker_id", id).
			Msg("write-through upsert failed")
	}
}
