package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deltaneutral/dnfvault/pkg/discovery"
)

// NewEndpointsCmd creates the endpoints command.
func NewEndpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Show the discovered API endpoints",
		Long: `Run endpoint discovery and probe each candidate server, showing
which ones answer their health check.`,
		RunE: runEndpoints,
	}

	return cmd
}

func runEndpoints(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if _, err := loadConfig(); err != nil {
		return err
	}

	resolver := discovery.NewResolver(discovery.DefaultProbeTimeout, Version)
	candidates := resolver.Resolve(ctx)

	healthy := 0
	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "ENDPOINT\tSTATUS")
	_, _ = fmt.Fprintln(tabWriter, "--------\t------")
	for _, url := range candidates {
		status := "healthy"
		if _, err := resolver.SelectHealthy(ctx, []string{url}); err != nil {
			status = "unreachable"
		} else {
			healthy++
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\n", url, status)
	}
	if err := tabWriter.Flush(); err != nil {
		return err
	}

	if healthy == 0 {
		return discovery.ErrNoHealthyEndpoint
	}
	return nil
}
