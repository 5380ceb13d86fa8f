package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deltaneutral/dnfvault/internal/logger"
	"github.com/deltaneutral/dnfvault/pkg/archive"
	"github.com/deltaneutral/dnfvault/pkg/config"
	"github.com/deltaneutral/dnfvault/pkg/download"
	"github.com/deltaneutral/dnfvault/pkg/fsutil"
	"github.com/deltaneutral/dnfvault/pkg/hooks"
	"github.com/deltaneutral/dnfvault/pkg/orchestrator"
)

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	var (
		outDir      string
		days        int
		groups      []string
		concurrency int
		extract     bool
		verify      string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download all purchased and group files",
		Long: `Download every file from your purchases and data groups into the
output directory. Files that already exist locally with the expected size
are skipped, so repeated runs only fetch what changed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Flag overrides
			if outDir != "" {
				cfg.Settings.OutputDir = outDir
			}
			if cmd.Flags().Changed("days") {
				cfg.Settings.Days = days
			}
			if len(groups) > 0 {
				cfg.Settings.Groups = groups
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Settings.Concurrency = concurrency
			}
			if cmd.Flags().Changed("extract") {
				cfg.Settings.Extract = extract
			}
			if verify != "" {
				cfg.Settings.Verify = verify
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runSync(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default from config)")
	cmd.Flags().IntVar(&days, "days", 0, "only fetch files created within the last N days")
	cmd.Flags().StringSliceVar(&groups, "groups", nil, "restrict group syncing to the named groups")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "parallel downloads per purchase or group")
	cmd.Flags().BoolVar(&extract, "extract", false, "unpack downloaded archives")
	cmd.Flags().StringVar(&verify, "verify", "", "skip gate for existing files (existence, size, checksum)")

	return cmd
}

func runSync(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}

	dl := download.NewManager(client, cfg.Settings.CDNTimeout, verifyMode(cfg))
	dl.ProgressOut = os.Stdout

	hookMgr := hooks.NewTengoExecutor()
	if configDir, err := fsutil.GetConfigDir(); err == nil {
		if err := hooks.LoadHooksFromDir(hookMgr, configDir); err != nil {
			logger.Warn("Failed to load hooks", logger.Fields{"error": err.Error()})
		}
	}

	orch := &orchestrator.Orchestrator{
		Client:    client,
		DL:        dl,
		Hooks:     hookMgr,
		Extractor: archive.NewManager(),
	}

	summary, err := orch.Run(ctx, orchestrator.Options{
		OutputDir:   cfg.Settings.OutputDir,
		Days:        cfg.Settings.Days,
		Groups:      cfg.Settings.Groups,
		Concurrency: cfg.Settings.Concurrency,
		Extract:     cfg.Settings.Extract,
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	logger.Successf("Sync complete: %s", summary.String())
	return nil
}
