package activity

import (
	"context"
	"sync"
	"time"

	"sleepsentinel/internal/logging"
)

// Source delivers user input activity as event timestamps. The channel
// closes when the source ends or ctx is cancelled.
type Source interface {
	Name() string
	Events(ctx context.Context) (<-chan time.Time, error)
}

// Recorder receives activity timestamps
type Recorder interface {
	RecordActivity(at time.Time)
}

// Listener fans the events of every source into a Recorder
type Listener struct {
	sources  []Source
	recorder Recorder
	logger   *logging.Logger
}

// NewListener creates a listener over sources
func NewListener(recorder Recorder, logger *logging.Logger, sources ...Source) *Listener {
	return &Listener{
		sources:  sources,
		recorder: recorder,
		logger:   logger,
	}
}

// Run subscribes to every source and records events until ctx is done. A
// source that fails to start is logged and skipped.
func (l *Listener) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	started := 0

	for _, src := range l.sources {
		events, err := src.Events(ctx)
		if err != nil {
			l.logger.Warn("activity.source.failed", "Activity source unavailable", map[string]interface{}{
				"source": src.Name(),
				"error":  err.Error(),
			})
			continue
		}

		started++
		wg.Add(1)
		go func(name string, events <-chan time.Time) {
			defer wg.Done()
			l.forward(ctx, name, events)
		}(src.Name(), events)
	}

	l.logger.Info("activity.listener.started", "Activity listener started", map[string]interface{}{
		"sources": started,
	})

	<-ctx.Done()
	wg.Wait()

	l.logger.Info("activity.listener.stopped", "Activity listener stopped", nil)
	return nil
}

func (l *Listener) forward(ctx context.Context, name string, events <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case at, ok := <-events:
			if !ok {
				l.logger.Debug("activity.source.closed", "Activity source ended", map[string]interface{}{
					"source": name,
				})
				return
			}
			l.recorder.RecordActivity(at)
		}
	}
}
