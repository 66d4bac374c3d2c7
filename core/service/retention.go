package service

import (
	"context"
	"log"
	"time"

	"vigil/core/repository"
)

// RetentionPruner periodically removes history older than the retention
// window so an always-on host does not grow its store without bound.
type RetentionPruner struct {
	store    *repository.Store
	days     int
	interval time.Duration
}

// NewRetentionPruner creates a pruner that runs every interval and deletes
// rows older than days.
func NewRetentionPruner(store *repository.Store, days int, interval time.Duration) *RetentionPruner {
	return &RetentionPruner{store: store, days: days, interval: interval}
}

// Run prunes immediately and then on every tick until ctx is cancelled.
func (p *RetentionPruner) Run(ctx context.Context) {
	log.Printf("Retention pruner started (every %v, keeping %d days)", p.interval, p.days)

	p.prune()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.prune()
		case <-ctx.Done():
			return
		}
	}
}

func (p *RetentionPruner) prune() {
	if n, err := p.store.Metrics.DeleteOlderThan(p.days); err != nil {
		log.Printf("Metric retention prune failed: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d metric samples older than %d days", n, p.days)
	}

	if n, err := p.store.Threats.DeleteOlderThan(p.days); err != nil {
		log.Printf("Threat score retention prune failed: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d threat scores older than %d days", n, p.days)
	}

	if n, err := p.store.Events.DeleteOlderThan(p.days); err != nil {
		log.Printf("Event retention prune failed: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d system events older than %d days", n, p.days)
	}
}
