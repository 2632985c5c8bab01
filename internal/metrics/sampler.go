package metrics

import (
	"context"
	"errors"
	"time"

	"sleepsentinel/internal/logging"
)

// SamplePublisher receives every freshly computed throughput sample
type SamplePublisher interface {
	PublishSample(sample ThroughputSample)
}

// Sampler measures network throughput continuously. Each sample reads the
// counters, waits one interval, reads them again and publishes the rates.
type Sampler struct {
	config    SamplerConfig
	reader    CounterReader
	publisher SamplePublisher
	writer    *Writer
	logger    *logging.Logger
	now       func() time.Time
}

// NewSampler creates a sampler publishing into publisher
func NewSampler(config SamplerConfig, reader CounterReader, publisher SamplePublisher, logger *logging.Logger) *Sampler {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Sampler{
		config:    config,
		reader:    reader,
		publisher: publisher,
		writer:    NewWriter(logger),
		logger:    logger,
		now:       time.Now,
	}
}

// RateMbps converts a byte-counter delta over interval into megabits per
// second. A counter that went backwards yields a negative rate.
func RateMbps(oldBytes, newBytes uint64, interval time.Duration) float64 {
	secs := interval.Seconds()
	if secs <= 0 {
		return 0
	}
	delta := int64(newBytes - oldBytes)
	return float64(delta) * 8 / (secs * 1_000_000)
}

// Run samples until ctx is cancelled. Failed reads are logged and the loop
// carries on with the next tick.
func (s *Sampler) Run(ctx context.Context) error {
	s.logger.Info("sampler.started", "Network speed sampling started", map[string]interface{}{
		"interval":    s.config.Interval.String(),
		"record_path": s.config.RecordPath,
	})

	for {
		if ctx.Err() != nil {
			s.logger.Info("sampler.stopped", "Network speed sampling stopped", nil)
			return nil
		}

		sample, err := s.sampleOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			payload := map[string]interface{}{"error": err.Error()}
			var sampleErr *SampleError
			if errors.As(err, &sampleErr) {
				payload["stage"] = sampleErr.Stage
			}
			s.logger.Error("sampler.read.failed", "Failed to read network counters", payload)

			// Back off one interval so a persistent failure cannot spin
			sleepContext(ctx, s.config.Interval)
			continue
		}

		s.publisher.PublishSample(sample)

		s.logger.Debug("sampler.sample", "Current speeds", map[string]interface{}{
			"download_mbps": sample.DownloadMbps,
			"upload_mbps":   sample.UploadMbps,
		})

		if s.config.RecordPath != "" {
			if err := s.writer.Write(sample, s.config.RecordPath); err != nil {
				s.logger.Warn("sampler.record.failed", "Failed to record sample", map[string]interface{}{
					"error": err.Error(),
					"path":  s.config.RecordPath,
				})
			}
		}
	}
}

func (s *Sampler) sampleOnce(ctx context.Context) (ThroughputSample, error) {
	before, err := s.reader.ReadCounters(ctx)
	if err != nil {
		return ThroughputSample{}, &SampleError{Stage: "before", Err: err}
	}

	if !sleepContext(ctx, s.config.Interval) {
		return ThroughputSample{}, ctx.Err()
	}

	after, err := s.reader.ReadCounters(ctx)
	if err != nil {
		return ThroughputSample{}, &SampleError{Stage: "after", Err: err}
	}

	return ThroughputSample{
		DownloadMbps: RateMbps(before.BytesRecv, after.BytesRecv, s.config.Interval),
		UploadMbps:   RateMbps(before.BytesSent, after.BytesSent, s.config.Interval),
		MeasuredAt:   s.now(),
	}, nil
}

// sleepContext waits for d and reports false when ctx ended first
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
