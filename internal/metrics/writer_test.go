package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sleepsentinel/internal/logging"
)

func TestWriter_Write(t *testing.T) {
	logger := logging.NewLogger(logging.LevelInfo)
	writer := NewWriter(logger)

	tmpFile := filepath.Join(t.TempDir(), "samples.jsonl")

	sample := ThroughputSample{
		DownloadMbps: 12.5,
		UploadMbps:   0.75,
		MeasuredAt:   time.Now().UTC(),
	}

	if err := writer.Write(sample, tmpFile); err != nil {
		t.Fatalf("Expected successful write, got error: %v", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "download_mbps") {
		t.Error("Expected file to contain download_mbps field")
	}
	if !strings.Contains(content, "upload_mbps") {
		t.Error("Expected file to contain upload_mbps field")
	}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}

	var readSample ThroughputSample
	if err := json.Unmarshal([]byte(lines[0]), &readSample); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
	if readSample.DownloadMbps != 12.5 {
		t.Errorf("DownloadMbps = %v, want 12.5", readSample.DownloadMbps)
	}
}

func TestWriter_Write_Appends(t *testing.T) {
	logger := logging.NewLogger(logging.LevelInfo)
	writer := NewWriter(logger)

	tmpFile := filepath.Join(t.TempDir(), "samples.jsonl")

	for i := 0; i < 3; i++ {
		sample := ThroughputSample{DownloadMbps: float64(i), MeasuredAt: time.Now().UTC()}
		if err := writer.Write(sample, tmpFile); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
}

func TestWriter_Write_InvalidPath(t *testing.T) {
	logger := logging.NewLogger(logging.LevelError)
	writer := NewWriter(logger)

	path := filepath.Join(t.TempDir(), "missing", "dir", "samples.jsonl")
	if err := writer.Write(ThroughputSample{}, path); err == nil {
		t.Error("Expected error for non-existent directory")
	}
}
