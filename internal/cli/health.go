package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deltaneutral/dnfvault/pkg/vault"
)

// NewHealthCmd creates the health command.
func NewHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show server health including database status",
		RunE:  runHealth,
	}

	return cmd
}

func runHealth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	baseURL, err := resolveBaseURL(ctx, cfg)
	if err != nil {
		return err
	}

	// Extended health needs no authentication.
	client := vault.NewClient(baseURL, cfg.Settings.HTTPTimeout, cfg.Settings.DownloadTimeout)
	health, err := client.HealthDB(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintf(tabWriter, "Server\t%s\n", baseURL)
	_, _ = fmt.Fprintf(tabWriter, "Status\t%s\n", health.Status)
	_, _ = fmt.Fprintf(tabWriter, "Database\t%s\n", health.Database)
	_, _ = fmt.Fprintf(tabWriter, "Files\t%d\n", health.Files)
	_, _ = fmt.Fprintf(tabWriter, "Users\t%d\n", health.Users)
	return tabWriter.Flush()
}
