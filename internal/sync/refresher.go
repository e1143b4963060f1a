package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/smarttodo/internal/logger"
	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/store"
)

// defaultInterval is used when the configured interval is not positive.
const defaultInterval = 5 * time.Second

// fetchTimeout is the maximum time allowed for a single snapshot read.
const fetchTimeout = 10 * time.Second

// TodoLister reads the authoritative todo snapshot.
type TodoLister interface {
	ListTodos(ctx context.Context, filter store.TodoFilter) ([]model.Todo, error)
}

// Sink receives each authoritative snapshot. reconcile.Board satisfies it.
type Sink interface {
	Refresh(todos []model.Todo)
}

// Status is the outcome of the most recent refresh.
type Status struct {
	LastRefresh time.Time
	Err         error
}

// Refresher periodically re-reads all todos and feeds them to a sink, so
// writes from other processes reach the session board.
type Refresher struct {
	lister   TodoLister
	sink     Sink
	interval time.Duration
	log      *log.Logger

	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}

	mu      gosync.Mutex
	running bool
	stopped bool
	status  Status
}

// New creates a Refresher. A nil logger discards output.
func New(lister TodoLister, sink Sink, interval time.Duration, l *log.Logger) *Refresher {
	if interval <= 0 {
		interval = defaultInterval
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Refresher{
		lister:    lister,
		sink:      sink,
		interval:  interval,
		log:       l.WithPrefix("sync"),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs an immediate refresh and then the polling loop in a
// goroutine. Calling Start twice, or after Stop, is a no-op.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running || r.stopped {
		return
	}
	r.running = true
	go r.loop()
}

// Stop halts the polling loop and waits for an in-flight refresh. A
// stopped Refresher cannot be started again.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.stopped = true
	close(r.stopCh)
	r.mu.Unlock()

	<-r.doneCh
}

// Trigger requests an immediate refresh without blocking. Requests made
// while one is pending are coalesced.
func (r *Refresher) Trigger() {
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the outcome of the most recent refresh.
func (r *Refresher) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.status
}

func (r *Refresher) loop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refresh()
		case <-r.triggerCh:
			r.refresh()
		}
	}
}

// RefreshNow performs one synchronous refresh.
func (r *Refresher) RefreshNow() error {
	return r.refresh()
}

func (r *Refresher) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	todos, err := r.lister.ListTodos(ctx, store.TodoFilter{})
	if err == nil {
		r.sink.Refresh(todos)
	} else {
		r.log.Warn("refresh failed", "err", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.Err = err
	if err == nil {
		r.status.LastRefresh = time.Now()
	}
	return err
}
