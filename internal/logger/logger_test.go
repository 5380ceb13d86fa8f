package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, level string, fn func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	// Reinitialize logger with test output
	logger = nil
	InitLogger(level)

	fn()

	return buf.String()
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func()
		contains []string
		excludes []string
	}{
		{
			name:  "info log",
			level: "info",
			logFn: func() {
				Info("test info message")
			},
			contains: []string{"test info message"},
		},
		{
			name:  "debug log with debug level",
			level: "debug",
			logFn: func() {
				Debug("test debug message")
			},
			contains: []string{"test debug message", "level=DEBUG"},
		},
		{
			name:  "debug log with info level",
			level: "info",
			logFn: func() {
				Debug("test debug message")
			},
			excludes: []string{"test debug message"},
		},
		{
			name:  "error log",
			level: "error",
			logFn: func() {
				Error("test error message")
			},
			contains: []string{"test error message", "level=ERROR"},
		},
		{
			name:  "warn log with fields",
			level: "warn",
			logFn: func() {
				Warn("probe failed", Fields{"url": "https://api.example.com"})
			},
			contains: []string{"probe failed", "url=https://api.example.com"},
		},
		{
			name:  "formatted info log",
			level: "info",
			logFn: func() {
				Infof("downloaded %d files", 3)
			},
			contains: []string{"downloaded 3 files"},
		},
		{
			name:  "success log",
			level: "info",
			logFn: func() {
				Success("sync complete")
			},
			contains: []string{"sync complete", "status=success"},
		},
		{
			name:  "unknown level falls back to info",
			level: "bogus",
			logFn: func() {
				Info("still logged")
			},
			contains: []string{"still logged"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureOutput(t, tt.level, tt.logFn)
			for _, want := range tt.contains {
				assert.Contains(t, output, want)
			}
			for _, not := range tt.excludes {
				assert.NotContains(t, output, not)
			}
		})
	}
}
