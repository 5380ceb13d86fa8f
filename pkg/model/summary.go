package model

import "fmt"

// Outcome is the terminal state of a single file transfer.
type Outcome int

const (
	OutcomeDownloaded Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Summary accumulates per-file outcomes over a run.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Record adds one outcome to the summary.
func (s *Summary) Record(o Outcome) {
	switch o {
	case OutcomeDownloaded:
		s.Downloaded++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Total returns the number of files seen.
func (s *Summary) Total() int {
	return s.Downloaded + s.Skipped + s.Failed
}

// String renders the summary for the end-of-run report.
func (s *Summary) String() string {
	return fmt.Sprintf("%d downloaded, %d skipped, %d failed", s.Downloaded, s.Skipped, s.Failed)
}
