package metrics

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/net"
)

// CounterReader reads cumulative network byte counters
type CounterReader interface {
	ReadCounters(ctx context.Context) (Counters, error)
}

// PsutilReader reads aggregate interface counters through gopsutil
type PsutilReader struct{}

// NewPsutilReader creates a reader backed by the OS network statistics
func NewPsutilReader() *PsutilReader {
	return &PsutilReader{}
}

// ReadCounters returns bytes received and sent across all interfaces
func (r *PsutilReader) ReadCounters(ctx context.Context) (Counters, error) {
	stats, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return Counters{}, fmt.Errorf("io counters: %w", err)
	}
	if len(stats) == 0 {
		return Counters{}, ErrNoCounters
	}

	// pernic=false yields a single "all" entry
	return Counters{
		BytesRecv: stats[0].BytesRecv,
		BytesSent: stats[0].BytesSent,
	}, nil
}
