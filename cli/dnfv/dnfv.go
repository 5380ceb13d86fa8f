package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deltaneutral/dnfvault/internal/cli"
	"github.com/deltaneutral/dnfvault/pkg/discovery"
	"github.com/deltaneutral/dnfvault/pkg/vault"
)

// Exit codes, kept stable for cron wrappers.
const (
	exitOK         = 0
	exitFailure    = 1
	exitNoEndpoint = 2
	exitAuthFailed = 3
)

var (
	configPath string
	verbose    bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(exitCode(err))
	}

	cancel()
	os.Exit(exitOK)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dnfv",
		Short: "DN FileVault download client",
		Long: `dnfv keeps a local mirror of your DN FileVault purchases and data
groups. It discovers a healthy API server, logs in, and downloads any files
missing locally, preferring the CDN and falling back to the authenticated
API route.`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose

	// Add subcommands
	cmd.AddCommand(
		cli.NewSyncCmd(),
		cli.NewPurchasesCmd(),
		cli.NewGroupsCmd(),
		cli.NewEndpointsCmd(),
		cli.NewHealthCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, discovery.ErrNoHealthyEndpoint):
		return exitNoEndpoint
	case errors.Is(err, vault.ErrBadCredentials), errors.Is(err, vault.ErrAuthUnavailable):
		return exitAuthFailed
	default:
		return exitFailure
	}
}
