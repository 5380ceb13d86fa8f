//go:generate mockgen -destination=./mocks/orchestrator.go . VaultAPI,Downloader,Extractor

package orchestrator

import (
	"context"

	"github.com/deltaneutral/dnfvault/pkg/download"
	"github.com/deltaneutral/dnfvault/pkg/hooks"
	"github.com/deltaneutral/dnfvault/pkg/model"
)

// VaultAPI is the subset of the vault client used by the orchestrator.
// The caller authenticates the client before Run.
type VaultAPI interface {
	ListPurchases(ctx context.Context) ([]model.Container, error)
	ListGroups(ctx context.Context) ([]model.Container, error)
	ListFiles(ctx context.Context, container model.Container) ([]model.FileRecord, error)
}

// Downloader handles file transfers for one container directory.
type Downloader interface {
	FetchBatch(ctx context.Context, records []model.FileRecord, dir string, opts download.Options) model.Summary
}

// Extractor unpacks downloaded archives when extraction is enabled.
type Extractor interface {
	IsArchive(name string) bool
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}

// Orchestrator ties the vault client, download manager, hooks and archive
// extraction together for a full sync run.
type Orchestrator struct {
	Client    VaultAPI
	DL        Downloader
	Hooks     hooks.Manager // optional
	Extractor Extractor     // optional, used only with Options.Extract
}

// Options control one sync run.
type Options struct {
	// OutputDir is the root download directory. Purchases land under
	// OutputDir/Purchases, groups under OutputDir/Groups.
	OutputDir string

	// Days limits the run to files created within the last N days.
	// Zero means everything.
	Days int

	// Groups restricts group syncing to the named groups
	// (case-insensitive). Empty means all groups.
	Groups []string

	// Concurrency is the download worker count per container.
	Concurrency int

	// Extract unpacks downloaded archives into a directory named after
	// the archive.
	Extract bool
}
