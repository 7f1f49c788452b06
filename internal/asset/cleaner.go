package asset

import (
	"context"

	"notely/pkg/logger"
	"notely/pkg/metrics"
)

// Deletion is one scheduled best-effort asset removal.
type Deletion struct {
	PublicID     string
	ResourceType ResourceType
}

// Cleaner drains scheduled deletions on a single background goroutine.
// Deletions are best-effort: a failure is logged and counted but never
// reported to the request that scheduled it.
type Cleaner struct {
	store Store
	jobs  chan Deletion
}

func NewCleaner(store Store, queueSize int) *Cleaner {
	return &Cleaner{
		store: store,
		jobs:  make(chan Deletion, queueSize),
	}
}

// Schedule enqueues a deletion without blocking. When the queue is full
// the job is dropped; the asset stays in the store until swept by hand.
func (c *Cleaner) Schedule(d Deletion) {
	if d.PublicID == "" {
		return
	}
	select {
	case c.jobs <- d:
	default:
		metrics.AssetCleanupDropped.Inc()
		logger.Sugar.Warnf("Asset cleanup queue full, dropping delete of %s", d.PublicID)
	}
}

// Run processes deletions until Close is called. Start it on its own
// goroutine.
func (c *Cleaner) Run() {
	for job := range c.jobs {
		if err := c.store.Delete(context.Background(), job.PublicID, job.ResourceType); err != nil {
			metrics.AssetCleanupFailures.Inc()
			logger.Sugar.Errorf("Failed to delete asset %s (%s): %v", job.PublicID, job.ResourceType, err)
			continue
		}
		metrics.AssetCleanupDeleted.Inc()
	}
}

// Close stops Run after the queued jobs are drained.
func (c *Cleaner) Close() {
	close(c.jobs)
}
