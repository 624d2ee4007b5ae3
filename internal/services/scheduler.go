package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/clashpoint/deltacoin/internal/config"
)

// Scheduler drives the background maintenance jobs: the hold expiry
// sweep and the periodic wallet reconciliation.
type Scheduler struct {
	holds          *HoldService
	reconciliation *ReconciliationService
	cfg            *config.LedgerConfig

	stop    chan bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

func NewScheduler(holds *HoldService, reconciliation *ReconciliationService, cfg *config.LedgerConfig) *Scheduler {
	return &Scheduler{
		holds:          holds,
		reconciliation: reconciliation,
		cfg:            cfg,
		stop:           make(chan bool),
	}
}

// Start launches the background loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	s.wg.Add(1)

	go s.run()

	log.Printf("[Scheduler] started: hold sweep every %v, reconciliation every %v (dry_run=%t)",
		s.cfg.HoldSweepInterval, s.cfg.ReconciliationInterval, s.cfg.ReconciliationDryRun)
}

// Stop halts the loop and waits for an in-flight job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	close(s.stop)
	s.wg.Wait()
	log.Println("[Scheduler] stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	sweep := time.NewTicker(s.cfg.HoldSweepInterval)
	defer sweep.Stop()
	reconcile := time.NewTicker(s.cfg.ReconciliationInterval)
	defer reconcile.Stop()

	// Run an expiry pass immediately so a restart does not leave
	// overdue holds pinning funds until the first tick.
	s.sweepHolds()

	for {
		select {
		case <-sweep.C:
			s.sweepHolds()
		case <-reconcile.C:
			s.reconcileWallets()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) sweepHolds() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.holds.ExpireDue(ctx); err != nil {
		log.Printf("[Scheduler] hold expiry sweep failed: %v", err)
	}
}

func (s *Scheduler) reconcileWallets() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.reconciliation.SweepAll(ctx, s.cfg.ReconciliationDryRun); err != nil {
		log.Printf("[Scheduler] reconciliation sweep failed: %v", err)
	}
}
