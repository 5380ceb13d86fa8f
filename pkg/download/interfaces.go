package download

import (
	"context"
	"io"

	"github.com/deltaneutral/dnfvault/pkg/model"
)

// FileSource is the authenticated fallback route for files whose CDN link
// is absent or failing. The vault client implements it.
type FileSource interface {
	DownloadTo(ctx context.Context, uuidFilename string, w io.Writer) error
}

// VerifyMode selects the gate used to decide whether an existing local file
// counts as already synced.
type VerifyMode int

const (
	// VerifyExistence skips any file that already exists locally.
	VerifyExistence VerifyMode = iota

	// VerifySize skips only when the local byte length matches the remote
	// file_size. This is the default smart-sync gate.
	VerifySize

	// VerifyChecksum additionally compares the SHA-256 of local content
	// against the remote checksum, and verifies downloads before they are
	// moved into place. Strictly more correct, strictly more expensive.
	VerifyChecksum
)

// Result is the terminal state of one FetchFile call.
type Result struct {
	Outcome model.Outcome
	Path    string
	Err     error
}

// Options control batch fetching.
type Options struct {
	// Concurrency is the worker pool size; values <= 1 mean sequential.
	Concurrency int

	// OnResult, when set, is invoked for every file after its transfer
	// reaches a terminal state. Callbacks may run from worker goroutines.
	OnResult func(model.FileRecord, Result)
}
