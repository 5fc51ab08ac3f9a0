package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/config"
	"github.com/spec-kit/loyalty-bridge/internal/domain"
	"github.com/spec-kit/loyalty-bridge/internal/loyalty"
	"github.com/spec-kit/loyalty-bridge/internal/mapper"
	"github.com/spec-kit/loyalty-bridge/internal/observability"
)

// CommerceSource lists recently closed commerce records for a trailing
// window.
type CommerceSource interface {
	FulfilledOrders(ctx context.Context, since time.Time) ([]domain.CommerceOrder, error)
	FullyRefundedReturns(ctx context.Context, since time.Time) ([]domain.CommerceReturn, error)
}

// TransactionSender delivers mapped transactions to the loyalty
// platform.
type TransactionSender interface {
	SendTransaction(ctx context.Context, txn *domain.LoyaltyTransaction) error
	SendReturn(ctx context.Context, txn *domain.LoyaltyReturnTransaction) error
}

// Dependencies bundles collaborators for the scheduler.
type Dependencies struct {
	Commerce CommerceSource
	Orders   *mapper.OrderMapper
	Returns  *mapper.ReturnMapper
	Sender   TransactionSender
	Tokens   loyalty.TokenSource
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// Scheduler drives the periodic synchronization pipelines. Ticks never
// overlap: a tick requested while another is running is dropped, not
// queued. Failures are observable only through logs and metrics; there
// is no caller to report to.
type Scheduler struct {
	cfg  config.SchedulerConfig
	deps Dependencies

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
}

// New constructs a scheduler.
func New(cfg config.SchedulerConfig, deps Dependencies) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		deps:   deps,
		stopCh: make(chan struct{}),
	}
}

// Start launches the tick loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.deps.Logger.Info("starting sync scheduler",
		zap.Duration("interval", s.cfg.Interval()),
		zap.Duration("window", s.cfg.Window()),
		zap.Bool("return_sync", s.cfg.ReturnSyncEnabled))

	go func() {
		ticker := time.NewTicker(s.cfg.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Stop terminates the tick loop. Terminal; the scheduler cannot be
// restarted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.deps.Logger.Info("sync scheduler stopped")
}

// Tick runs one synchronization pass: fetch the batch, then map and send
// each record concurrently with independent failure isolation.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.begin() {
		s.deps.Logger.Debug("previous sync still running, skipping tick")
		s.deps.Metrics.RecordTickSkipped()
		return
	}
	defer s.end()

	start := time.Now()
	log := s.deps.Logger.With(zap.String("run_id", uuid.NewString()))
	s.deps.Metrics.RecordTick()

	// Warm the credential up front so a cold cache is paid once, not
	// once per order. The sender still acquires per call.
	if _, err := s.deps.Tokens.Token(ctx); err != nil {
		log.Error("authorization failed, skipping sync run", zap.Error(err))
		return
	}

	s.syncOrders(ctx, log)
	if s.cfg.ReturnSyncEnabled {
		s.syncReturns(ctx, log)
	}

	s.deps.Metrics.RecordTickDuration(time.Since(start))
}

func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Scheduler) syncOrders(ctx context.Context, log *zap.Logger) {
	since := time.Now().Add(-s.cfg.Window())
	orders, err := s.deps.Commerce.FulfilledOrders(ctx, since)
	if err != nil {
		log.Error("failed to fetch fulfilled orders", zap.Error(err))
		return
	}
	if len(orders) == 0 {
		return
	}
	log.Info("processing fulfilled orders", zap.Int("count", len(orders)))

	var wg sync.WaitGroup
	for i := range orders {
		order := orders[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.processOrder(ctx, log, &order)
		}()
	}
	wg.Wait()
}

// processOrder maps and delivers one order. Failure is logged and the
// order dropped; siblings are unaffected.
func (s *Scheduler) processOrder(ctx context.Context, log *zap.Logger, order *domain.CommerceOrder) {
	defer s.recoverItem(log, "order", order.ID)

	txn, err := s.deps.Orders.Map(ctx, order, order.Items)
	if err != nil {
		log.Error("order mapping failed", zap.String("order_id", order.ID), zap.Error(err))
		s.deps.Metrics.RecordOrderSyncFailure()
		return
	}
	if err := s.deps.Sender.SendTransaction(ctx, txn); err != nil {
		log.Error("order delivery failed", zap.String("order_id", order.ID), zap.Error(err))
		s.deps.Metrics.RecordOrderSyncFailure()
		return
	}

	log.Info("order synced",
		zap.String("order_id", order.ID),
		zap.String("bill_number", txn.BillNumber),
		zap.String("type", string(txn.Type)))
	s.deps.Metrics.RecordOrderSynced()
}

func (s *Scheduler) syncReturns(ctx context.Context, log *zap.Logger) {
	since := time.Now().Add(-s.cfg.Window())
	returns, err := s.deps.Commerce.FullyRefundedReturns(ctx, since)
	if err != nil {
		log.Error("failed to fetch refunded returns", zap.Error(err))
		return
	}
	if len(returns) == 0 {
		return
	}
	log.Info("processing refunded returns", zap.Int("count", len(returns)))

	var wg sync.WaitGroup
	for i := range returns {
		ret := returns[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.processReturn(ctx, log, &ret)
		}()
	}
	wg.Wait()
}

func (s *Scheduler) processReturn(ctx context.Context, log *zap.Logger, ret *domain.CommerceReturn) {
	defer s.recoverItem(log, "return", ret.ID)

	txn, err := s.deps.Returns.Map(ctx, ret)
	if err != nil {
		log.Error("return mapping failed", zap.String("return_id", ret.ID), zap.Error(err))
		s.deps.Metrics.RecordReturnSyncFailure()
		return
	}
	if err := s.deps.Sender.SendReturn(ctx, txn); err != nil {
		log.Error("return delivery failed", zap.String("return_id", ret.ID), zap.Error(err))
		s.deps.Metrics.RecordReturnSyncFailure()
		return
	}

	log.Info("return synced",
		zap.String("return_id", ret.ID),
		zap.String("bill_number", txn.BillNumber),
		zap.String("type", string(txn.Type)))
	s.deps.Metrics.RecordReturnSynced()
}

// recoverItem keeps a panicking item from taking down its siblings or
// the tick loop.
func (s *Scheduler) recoverItem(log *zap.Logger, kind, id string) {
	if r := recover(); r != nil {
		log.Error("panic while processing item",
			zap.String("kind", kind),
			zap.String("id", id),
			zap.Any("panic", r))
	}
}
