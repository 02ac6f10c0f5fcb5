package worker

import (
	"context"
	"log"
	"time"

	"creditguard-bot/store"
)

// Sweeper runs the expiration sweep on a timer. The gate already sweeps
// on every incoming message; this keeps quiet deployments honest too.
type Sweeper struct {
	Store    *store.Store
	Interval time.Duration
}

func NewSweeper(st *store.Store, interval time.Duration) *Sweeper {
	return &Sweeper{Store: st, Interval: interval}
}

func (s *Sweeper) Start() {
	ticker := time.NewTicker(s.Interval)
	log.Println("🧹 Background expiration sweeper started")

	// Run once at start
	s.sweep()

	for range ticker.C {
		s.sweep()
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := s.Store.SweepExpired(ctx)
	if err != nil {
		log.Printf("❌ Expiration sweep failed: %v", err)
		return
	}
	if report.DemotedUsers > 0 || report.DeletedKeys > 0 || report.DeletedGroups > 0 {
		log.Printf("🧹 Sweep: %d users demoted, %d keys removed, %d groups removed",
			report.DemotedUsers, report.DeletedKeys, report.DeletedGroups)
	}
}
