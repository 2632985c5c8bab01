package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sleepsentinel/internal/fsutil"
	"sleepsentinel/internal/logging"
)

// Writer appends throughput samples to a JSONL file
type Writer struct {
	logger *logging.Logger
}

// NewWriter creates a new sample writer
func NewWriter(logger *logging.Logger) *Writer {
	return &Writer{
		logger: logger,
	}
}

// Write appends one sample as a JSON line, creating the file if needed
func (w *Writer) Write(sample ThroughputSample, path string) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	// Append newline for JSONL format
	data = append(data, '\n')

	file, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, fsutil.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to open sample log: %w", err)
	}
	defer fsutil.CloseWithError(file.Close, w.logger, "sample log")

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}

	return nil
}
