// Package progress renders human-readable transfer progress for streamed
// downloads.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"
)

const defaultUpdateInterval = 500 * time.Millisecond

// Reporter counts bytes written through it and periodically renders
// progress for one transfer. It implements io.Writer so it can sit in an
// io.MultiWriter next to the destination file.
type Reporter struct {
	name      string
	totalSize int64
	out       io.Writer

	written    int64
	startTime  time.Time
	lastUpdate time.Time
	rendered   bool
}

// NewReporter creates a reporter for one named transfer. totalSize may be
// zero when the remote size is unknown. A nil out defaults to os.Stdout.
func NewReporter(name string, totalSize int64, out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	now := time.Now()
	return &Reporter{
		name:       name,
		totalSize:  totalSize,
		out:        out,
		startTime:  now,
		lastUpdate: now,
	}
}

// Write implements io.Writer. It never fails; rendering problems are
// ignored so they cannot abort a transfer.
func (r *Reporter) Write(p []byte) (int, error) {
	r.written += int64(len(p))
	if time.Since(r.lastUpdate) >= defaultUpdateInterval {
		r.render()
		r.lastUpdate = time.Now()
	}
	return len(p), nil
}

// Finish renders the final state and terminates the progress line.
func (r *Reporter) Finish() {
	r.render()
	if r.rendered {
		fmt.Fprintln(r.out)
	}
}

// Written returns the number of bytes seen so far.
func (r *Reporter) Written() int64 {
	return r.written
}

func (r *Reporter) render() {
	elapsed := time.Since(r.startTime).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(r.written) / (1024 * 1024) / elapsed
	}

	if r.totalSize > 0 {
		percent := float64(r.written) / float64(r.totalSize) * 100
		fmt.Fprintf(r.out, "\r  %s: %6.1f%% | %6.2f MB/s", r.name, percent, speed)
	} else {
		fmt.Fprintf(r.out, "\r  %s: %s | %6.2f MB/s", r.name, formatBytes(r.written), speed)
	}
	r.rendered = true
}

func formatBytes(n int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
		gib = 1024 * mib
	)
	switch {
	case n >= gib:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(gib))
	case n >= mib:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(mib))
	case n >= kib:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(kib))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
