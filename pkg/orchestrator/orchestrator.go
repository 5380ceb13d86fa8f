package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/deltaneutral/dnfvault/internal/logger"
	"github.com/deltaneutral/dnfvault/pkg/download"
	"github.com/deltaneutral/dnfvault/pkg/fsutil"
	"github.com/deltaneutral/dnfvault/pkg/hooks"
	"github.com/deltaneutral/dnfvault/pkg/model"
)

// Run syncs purchases first, then groups, into opts.OutputDir and returns
// the aggregated summary. Container listing failures are isolated: one bad
// container never aborts its siblings. Run assumes the client is already
// authenticated; only infrastructure problems (nil collaborators) return an
// error.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (model.Summary, error) {
	var summary model.Summary

	if o.Client == nil {
		return summary, fmt.Errorf("vault client is not configured")
	}
	if o.DL == nil {
		return summary, fmt.Errorf("download manager is not configured")
	}

	var cutoff time.Time
	if opts.Days > 0 {
		cutoff = time.Now().UTC().AddDate(0, 0, -opts.Days)
	}

	logger.Info("Checking purchases")
	purchases, err := o.Client.ListPurchases(ctx)
	if err != nil {
		logger.Error("Failed to list purchases", logger.Fields{"error": err.Error()})
	} else if len(purchases) == 0 {
		logger.Info("No purchases found")
	}
	for _, p := range purchases {
		o.syncContainer(ctx, p, opts, cutoff, &summary)
	}

	logger.Info("Checking groups")
	groups, err := o.Client.ListGroups(ctx)
	if err != nil {
		logger.Error("Failed to list groups", logger.Fields{"error": err.Error()})
	} else if len(groups) == 0 {
		logger.Info("No groups found")
	}
	for _, g := range groups {
		if !groupWanted(g.Name, opts.Groups) {
			logger.Debug("Group filtered out", logger.Fields{"group": g.Name})
			continue
		}
		o.syncContainer(ctx, g, opts, cutoff, &summary)
	}

	o.runPostSyncHook(summary)

	return summary, nil
}

// syncContainer downloads one purchase or group into its own directory.
func (o *Orchestrator) syncContainer(ctx context.Context, container model.Container, opts Options, cutoff time.Time, summary *model.Summary) {
	files, err := o.Client.ListFiles(ctx, container)
	if err != nil {
		logger.Error("Failed to list container files", logger.Fields{
			"kind":  string(container.Kind),
			"id":    container.ID,
			"error": err.Error(),
		})
		return
	}

	files = filterByCutoff(files, cutoff)
	if len(files) == 0 {
		logger.Debug("Nothing to fetch", logger.Fields{"kind": string(container.Kind), "id": container.ID})
		return
	}

	dir := filepath.Join(opts.OutputDir, containerSubdir(container.Kind),
		fsutil.SanitizeName(fmt.Sprintf("%d - %s", container.ID, containerName(container))))

	logger.Info("Syncing container", logger.Fields{
		"kind":  string(container.Kind),
		"name":  containerName(container),
		"files": len(files),
	})

	batch := o.DL.FetchBatch(ctx, files, dir, download.Options{
		Concurrency: opts.Concurrency,
		OnResult: func(record model.FileRecord, res download.Result) {
			o.handleResult(ctx, container, record, res, opts)
		},
	})

	summary.Downloaded += batch.Downloaded
	summary.Skipped += batch.Skipped
	summary.Failed += batch.Failed
}

// handleResult logs the outcome and runs the post-download follow-ups for
// successful transfers.
func (o *Orchestrator) handleResult(ctx context.Context, container model.Container, record model.FileRecord, res download.Result, opts Options) {
	name := filepath.Base(res.Path)
	switch res.Outcome {
	case model.OutcomeDownloaded:
		logger.Success("Downloaded", logger.Fields{"file": name})
	case model.OutcomeSkipped:
		logger.Debug("Already synced", logger.Fields{"file": name})
		return
	case model.OutcomeFailed:
		errMsg := "unknown error"
		if res.Err != nil {
			errMsg = res.Err.Error()
		}
		logger.Error("Transfer failed", logger.Fields{"file": record.DisplayName, "error": errMsg})
		return
	}

	if opts.Extract && o.Extractor != nil && o.Extractor.IsArchive(res.Path) {
		destDir := strings.TrimSuffix(res.Path, filepath.Ext(res.Path))
		if err := o.Extractor.ExtractAll(ctx, res.Path, destDir); err != nil {
			logger.Error("Extraction failed", logger.Fields{"file": name, "error": err.Error()})
		} else {
			logger.Info("Extracted archive", logger.Fields{"file": name, "dest": destDir})
		}
	}

	if o.Hooks != nil {
		err := o.Hooks.Execute(hooks.PostDownload, hooks.HookContext{
			FileName:      name,
			FilePath:      res.Path,
			ContainerName: containerName(container),
			ContainerKind: string(container.Kind),
		})
		if err != nil {
			logger.Error("Post-download hook failed", logger.Fields{"file": name, "error": err.Error()})
		}
	}
}

func (o *Orchestrator) runPostSyncHook(summary model.Summary) {
	if o.Hooks == nil {
		return
	}
	err := o.Hooks.Execute(hooks.PostSync, hooks.HookContext{
		Vars: map[string]interface{}{
			"downloaded": summary.Downloaded,
			"skipped":    summary.Skipped,
			"failed":     summary.Failed,
		},
	})
	if err != nil {
		logger.Error("Post-sync hook failed", logger.Fields{"error": err.Error()})
	}
}

// filterByCutoff keeps files created at or after the cutoff. Files without
// a parseable timestamp are kept; the filter should never hide files the
// server failed to annotate.
func filterByCutoff(files []model.FileRecord, cutoff time.Time) []model.FileRecord {
	if cutoff.IsZero() {
		return files
	}
	kept := make([]model.FileRecord, 0, len(files))
	for _, f := range files {
		created, ok := f.CreatedTime()
		if ok && created.Before(cutoff) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func groupWanted(name string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, g := range filter {
		if strings.EqualFold(strings.TrimSpace(g), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func containerSubdir(kind model.ContainerKind) string {
	if kind == model.KindPurchase {
		return "Purchases"
	}
	return "Groups"
}

func containerName(container model.Container) string {
	if container.Name == "" {
		return "Unknown"
	}
	return container.Name
}
