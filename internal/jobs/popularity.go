package jobs

import "context"

// PopularitySnapshotter refreshes the cached popular-searches ranking from
// the in-process counter.
type PopularitySnapshotter interface {
	SnapshotPopular(ctx context.Context) error
}

// PopularityWorker periodically snapshots the popularity ranking into the
// cache so a restarted process does not serve an empty popular list.
type PopularityWorker struct {
	svc PopularitySnapshotter
}

// NewPopularityWorker creates a new PopularityWorker instance
func NewPopularityWorker(svc PopularitySnapshotter) *PopularityWorker {
	return &PopularityWorker{svc: svc}
}

// ProcessJobs implements Runner.
func (w *PopularityWorker) ProcessJobs(ctx context.Context) error {
	return w.svc.SnapshotPopular(ctx)
}
