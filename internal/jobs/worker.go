package jobs

import (
	"context"
	"log"
	"time"
)

// Runner is a periodic task driven by the Worker loop.
type Runner interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drives a Runner on a fixed interval until stopped.
type Worker struct {
	runner   Runner
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewWorker(runner Runner, interval time.Duration) *Worker {
	return &Worker{
		runner:   runner,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start blocks running the loop; call it in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("background worker started, interval %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("background worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("background worker stopped")
			return
		case <-ticker.C:
			if err := w.runner.ProcessJobs(ctx); err != nil {
				log.Printf("background job error: %v", err)
			}
		}
	}
}

// Stop signals the loop and waits for it to exit.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
