// Package download moves vault files onto local disk. Every transfer tries
// the pre-signed CDN link first and falls back to the authenticated API
// route, writing through a temp file that is atomically renamed on success.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/deltaneutral/dnfvault/internal/logger"
	"github.com/deltaneutral/dnfvault/internal/progress"
	pkgerrors "github.com/deltaneutral/dnfvault/pkg/errors"
	"github.com/deltaneutral/dnfvault/pkg/fsutil"
	"github.com/deltaneutral/dnfvault/pkg/model"
)

const (
	// DefaultCDNTimeout bounds direct CDN fetches.
	DefaultCDNTimeout = 2 * time.Minute

	// tempSuffix marks in-flight downloads. A crashed run leaves at most
	// a stray .part file, never a corrupt final file.
	tempSuffix = ".part"

	defaultUserAgent = "DNFileVaultClient/1.0-Go (+support@deltaneutral.com)"
)

// Manager downloads individual vault files with the CDN-first policy.
type Manager struct {
	cdnClient *http.Client
	source    FileSource
	verify    VerifyMode
	userAgent string

	// ProgressOut enables per-file progress rendering when non-nil.
	ProgressOut io.Writer
}

// NewManager creates a download manager. source provides the authenticated
// fallback route; a zero cdnTimeout selects the default.
func NewManager(source FileSource, cdnTimeout time.Duration, verify VerifyMode) *Manager {
	if cdnTimeout <= 0 {
		cdnTimeout = DefaultCDNTimeout
	}
	return &Manager{
		cdnClient: &http.Client{Timeout: cdnTimeout},
		source:    source,
		verify:    verify,
		userAgent: defaultUserAgent,
	}
}

// FetchFile transfers one file into dir, in strict order: local skip gate,
// CDN attempt, authenticated API fallback. It returns a terminal Result and
// never panics the batch; all failures are captured in Result.Err.
func (m *Manager) FetchFile(ctx context.Context, record model.FileRecord, dir string) Result {
	name := record.DisplayName
	if strings.TrimSpace(name) == "" {
		name = record.UUIDFilename
	}
	safeName := fsutil.SanitizeName(name)
	localPath := filepath.Join(dir, safeName)

	if m.alreadySynced(localPath, record) {
		return Result{Outcome: model.OutcomeSkipped, Path: localPath}
	}

	if err := fsutil.EnsureDir(dir); err != nil {
		return Result{Outcome: model.OutcomeFailed, Err: pkgerrors.Wrap(err, "could not create download dir")}
	}

	tmpPath := localPath + tempSuffix

	if record.CloudShareLink != "" {
		if err := m.fetchCDN(ctx, record, tmpPath, safeName); err != nil {
			logger.Info("CDN fetch failed, trying API fallback", logger.Fields{
				"file":  safeName,
				"error": err.Error(),
			})
			_ = os.Remove(tmpPath)
		} else if err := m.finalize(tmpPath, localPath, record); err != nil {
			return Result{Outcome: model.OutcomeFailed, Err: err}
		} else {
			return Result{Outcome: model.OutcomeDownloaded, Path: localPath}
		}
	}

	if record.UUIDFilename == "" {
		return Result{Outcome: model.OutcomeFailed, Err: pkgerrors.ErrNoDownloadID}
	}

	if err := m.fetchAPI(ctx, record, tmpPath, safeName); err != nil {
		_ = os.Remove(tmpPath)
		return Result{Outcome: model.OutcomeFailed, Err: err}
	}
	if err := m.finalize(tmpPath, localPath, record); err != nil {
		return Result{Outcome: model.OutcomeFailed, Err: err}
	}
	return Result{Outcome: model.OutcomeDownloaded, Path: localPath}
}

// FetchBatch transfers a set of files into dir and returns the aggregated
// summary. Per-file failures are isolated: they are counted and reported
// through OnResult but never abort the batch.
func (m *Manager) FetchBatch(ctx context.Context, records []model.FileRecord, dir string, opts Options) model.Summary {
	var summary model.Summary

	if opts.Concurrency <= 1 {
		for _, record := range records {
			res := m.FetchFile(ctx, record, dir)
			summary.Record(res.Outcome)
			if opts.OnResult != nil {
				opts.OnResult(record, res)
			}
		}
		return summary
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	tasks := make(chan model.FileRecord)

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range tasks {
				res := m.FetchFile(ctx, record, dir)
				mu.Lock()
				summary.Record(res.Outcome)
				mu.Unlock()
				if opts.OnResult != nil {
					opts.OnResult(record, res)
				}
			}
		}()
	}

	for _, record := range records {
		tasks <- record
	}
	close(tasks)
	wg.Wait()

	return summary
}

// alreadySynced applies the configured skip gate to an existing local file.
func (m *Manager) alreadySynced(localPath string, record model.FileRecord) bool {
	st, err := os.Stat(localPath)
	if err != nil {
		return false
	}

	switch m.verify {
	case VerifySize:
		if record.FileSize <= 0 {
			return true // remote size unknown, existence is the best gate we have
		}
		return st.Size() == record.FileSize
	case VerifyChecksum:
		if record.Checksum == "" {
			return record.FileSize <= 0 || st.Size() == record.FileSize
		}
		ok, err := verifySHA256(localPath, record.Checksum)
		return err == nil && ok
	default:
		return true
	}
}

func (m *Manager) fetchCDN(ctx context.Context, record model.FileRecord, tmpPath, safeName string) error {
	// The CDN link is pre-signed and self-authorizing: no bearer header.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, record.CloudShareLink, http.NoBody)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.cdnClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(err, "CDN request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("CDN returned %d: %w", resp.StatusCode, pkgerrors.ErrDownloadFailed)
	}

	return m.writeTemp(tmpPath, safeName, record.FileSize, func(w io.Writer) error {
		_, err := io.Copy(w, resp.Body)
		return err
	})
}

func (m *Manager) fetchAPI(ctx context.Context, record model.FileRecord, tmpPath, safeName string) error {
	return m.writeTemp(tmpPath, safeName, record.FileSize, func(w io.Writer) error {
		return m.source.DownloadTo(ctx, record.UUIDFilename, w)
	})
}

// writeTemp streams one transfer into tmpPath, rendering progress when
// enabled, and syncs before close.
func (m *Manager) writeTemp(tmpPath, safeName string, totalSize int64, transfer func(io.Writer) error) error {
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return pkgerrors.Wrap(err, "could not create temp file")
	}

	var dst io.Writer = tmp
	var reporter *progress.Reporter
	if m.ProgressOut != nil {
		reporter = progress.NewReporter(safeName, totalSize, m.ProgressOut)
		dst = io.MultiWriter(tmp, reporter)
	}

	if err := transfer(dst); err != nil {
		_ = tmp.Close()
		return pkgerrors.Wrap(err, "could not write file")
	}
	if reporter != nil {
		reporter.Finish()
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return pkgerrors.Wrap(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrap(err, "could not close file")
	}
	return nil
}

// finalize verifies the downloaded temp file when checksum mode is on, then
// moves it into place atomically.
func (m *Manager) finalize(tmpPath, localPath string, record model.FileRecord) error {
	if m.verify == VerifyChecksum && record.Checksum != "" {
		ok, err := verifySHA256(tmpPath, record.Checksum)
		if err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
		if !ok {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("checksum mismatch for %s: %w", localPath, pkgerrors.ErrFileHashMismatch)
		}
	}

	if err := fsutil.Move(tmpPath, localPath); err != nil {
		_ = os.Remove(tmpPath)
		return pkgerrors.Wrap(err, "could not finalize file")
	}
	return nil
}

func verifySHA256(path, wantHex string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, pkgerrors.Wrap(err, "open for checksum")
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, pkgerrors.Wrap(err, "hashing")
	}
	got := hex.EncodeToString(h.Sum(nil))
	return got == strings.ToLower(strings.TrimSpace(wantHex)), nil
}
