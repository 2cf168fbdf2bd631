package scheduler

import (
	"context"
	"log"
	"time"
)

// Task is one scheduled unit of work, typically a full sync run.
type Task func(ctx context.Context) error

// Every runs task once immediately and then on each interval tick until
// the context ends. Task errors are logged under name and never stop the
// cadence; overlap protection is the runner's job, not the ticker's.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	// first run without waiting a full interval
	go func() {
		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Printf("[%s] error: %v", name, err)
			}
		}
	}
}
