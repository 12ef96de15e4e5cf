package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/garazh/internal/metrics"
)

// Clock returns the current time.
type Clock func() time.Time

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(s *Service) { s.now = c }
}

// WithLocation sets the time zone that decides where a day ends.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithResetTimeout bounds how long a reset or import may take.
func WithResetTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.resetTimeout = d
		}
	}
}

// DefaultResetTimeout is used when no reset timeout is configured.
const DefaultResetTimeout = 30 * time.Second

// Service is the main entry point for garage operations. It keeps the
// catalog and order stores in memory and writes through to the backend:
// a change is applied in memory only after the backend accepted it.
type Service struct {
	backend      Backend
	now          Clock
	loc          *time.Location
	resetTimeout time.Duration

	mu       sync.RWMutex
	catalog  *CatalogStore
	orders   *OrderStore
	rolledOn Date
}

// NewService creates a service over the given backend. Call Load before use.
func NewService(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend:      backend,
		now:          time.Now,
		loc:          time.Local,
		resetTimeout: DefaultResetTimeout,
		catalog:      NewCatalogStore(nil, nil, nil),
		orders:       NewOrderStore(nil, ""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BackendName reports which storage backend is in use.
func (s *Service) BackendName() string {
	return s.backend.Name()
}

// Today returns the current calendar day in the service's time zone.
func (s *Service) Today() Date {
	return DateOf(s.now().In(s.loc))
}

// Load reads every collection from the backend and partitions orders into
// the active set and the daily log.
func (s *Service) Load(ctx context.Context) error {
	var ds Dataset
	err := s.call("list customers", func() (err error) {
		ds.Customers, err = s.backend.ListCustomers(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if err := s.call("list vehicles", func() (err error) {
		ds.Vehicles, err = s.backend.ListVehicles(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := s.call("list orders", func() (err error) {
		ds.Orders, err = s.backend.ListOrders(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := s.call("list service types", func() (err error) {
		ds.ServiceTypes, err = s.backend.ServiceTypes(ctx)
		return err
	}); err != nil {
		return err
	}
	if ds.ServiceTypes == nil {
		ds.ServiceTypes = DefaultServiceTypes()
	}

	s.mu.Lock()
	s.applyDatasetLocked(ds)
	active, archived := len(s.orders.active), len(s.orders.archive)
	s.mu.Unlock()

	slog.Info("garage data loaded",
		"backend", s.backend.Name(),
		"customers", len(ds.Customers),
		"vehicles", len(ds.Vehicles),
		"active_orders", active,
		"archived_orders", archived,
	)
	return nil
}

// RetryPolicy sets the wait between load attempts. The delay doubles after
// each failure, starting at Initial and capped at Max.
type RetryPolicy struct {
	Initial time.Duration
	Max     time.Duration
}

// DefaultRetryPolicy is used for zero RetryPolicy fields.
var DefaultRetryPolicy = RetryPolicy{Initial: time.Second, Max: 30 * time.Second}

// LoadWithRetry calls Load until it succeeds or ctx is done. Only transport
// failures are retried; when ctx ends the last load error is returned.
func (s *Service) LoadWithRetry(ctx context.Context, p RetryPolicy) error {
	if p.Initial <= 0 {
		p.Initial = DefaultRetryPolicy.Initial
	}
	if p.Max < p.Initial {
		p.Max = max(DefaultRetryPolicy.Max, p.Initial)
	}

	delay := p.Initial
	for attempt := 1; ; attempt++ {
		err := s.Load(ctx)
		if err == nil || !IsTransport(err) {
			return err
		}
		slog.Warn("loading garage data failed, retrying",
			"backend", s.backend.Name(),
			"attempt", attempt,
			"retry_in", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		case <-timer.C:
		}
		delay = min(delay*2, p.Max)
	}
}

func (s *Service) applyDatasetLocked(ds Dataset) {
	today := s.Today()
	s.catalog = NewCatalogStore(ds.Customers, ds.Vehicles, ds.ServiceTypes)
	s.orders = NewOrderStore(ds.Orders, today)
	s.rolledOn = today
	metrics.SetOrderCounts(len(s.orders.active), len(s.orders.archive))
}

// Rollover moves completed orders dated before today into the daily log and
// returns how many moved.
func (s *Service) Rollover() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rolloverLocked(s.Today())
}

func (s *Service) rolloverLocked(today Date) int {
	n := s.orders.Rollover(today)
	s.rolledOn = today
	if n > 0 {
		slog.Info("orders moved to daily log", "count", n, "date", today)
		metrics.AddArchived(n)
	}
	metrics.SetOrderCounts(len(s.orders.active), len(s.orders.archive))
	return n
}

// refresh re-runs the lifecycle rule when the day changed since it last ran.
func (s *Service) refresh() {
	today := s.Today()
	s.mu.RLock()
	stale := s.rolledOn != today
	s.mu.RUnlock()
	if !stale {
		return
	}
	s.mu.Lock()
	if s.rolledOn != today {
		s.rolloverLocked(today)
	}
	s.mu.Unlock()
}

// State returns a copy of everything the service holds.
func (s *Service) State() State {
	s.refresh()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Today:        s.Today(),
		Customers:    s.catalog.Customers(),
		Vehicles:     s.catalog.Vehicles(),
		ServiceTypes: s.catalog.ServiceTypes(),
		Active:       s.orders.Active(),
		Archived:     s.orders.Archived(),
	}
}

// call runs a backend operation, records its metrics and classifies its error.
func (s *Service) call(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveStorage(s.backend.Name(), op, time.Since(start), err)
	if err != nil {
		slog.Warn("storage operation failed", "backend", s.backend.Name(), "op", op, "error", err)
	}
	return storageError(op, err)
}
