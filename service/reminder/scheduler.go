package reminder

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the sweep on a fixed interval in the background. The HTTP
// trigger can fire at the same time; the reminder log keeps the two from
// double-sending.
type Scheduler struct {
	sweeper  *Sweeper
	interval time.Duration
	stopChan chan struct{}
}

func NewScheduler(sweeper *Sweeper, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Starting reminder scheduler")
	go s.run(ctx)
}

func (s *Scheduler) Stop() {
	log.Println("Stopping reminder scheduler")
	close(s.stopChan)
}

func (s *Scheduler) run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			log.Println("Reminder scheduler stopped")
			return
		case <-ctx.Done():
			log.Println("Reminder scheduler cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	result, err := s.sweeper.Run(ctx, time.Now())
	if err != nil {
		log.Printf("Scheduled reminder sweep failed: %v", err)
		return
	}
	if result.Failed > 0 {
		log.Printf("Reminder sweep: %d dispatched, %d deduped, %d failed",
			result.Dispatched, result.Deduped, result.Failed)
		for _, itemErr := range result.Errors {
			log.Printf("Reminder sweep item error: %v", itemErr)
		}
		return
	}
	if result.Dispatched > 0 {
		log.Printf("Reminder sweep: %d dispatched, %d deduped", result.Dispatched, result.Deduped)
	}
}
