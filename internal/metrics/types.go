package metrics

import (
	"errors"
	"fmt"
	"time"
)

// DefaultInterval is the nominal sampling period
const DefaultInterval = time.Second

// Counters is one reading of the cumulative OS network counters, summed over
// all interfaces.
type Counters struct {
	BytesRecv uint64
	BytesSent uint64
}

// ThroughputSample is the rate pair derived from two consecutive counter
// readings. Samples are immutable; consumers only keep the latest one.
type ThroughputSample struct {
	DownloadMbps float64   `json:"download_mbps"`
	UploadMbps   float64   `json:"upload_mbps"`
	MeasuredAt   time.Time `json:"ts"`
}

// SamplerConfig holds configuration for throughput sampling
type SamplerConfig struct {
	Interval   time.Duration // Time between the two counter reads of one sample
	RecordPath string        // Optional JSONL file receiving every published sample
}

// DefaultConfig returns a default sampler configuration
func DefaultConfig() SamplerConfig {
	return SamplerConfig{
		Interval: DefaultInterval,
	}
}

// ErrNoCounters is returned when the OS reports no network interfaces
var ErrNoCounters = errors.New("no network counters available")

// SampleError reports a single failed counter read. The sampler logs it and
// retries on the next tick.
type SampleError struct {
	Stage string // "before" or "after" the interval wait
	Err   error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("read network counters (%s): %v", e.Stage, e.Err)
}

func (e *SampleError) Unwrap() error {
	return e.Err
}
