package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deltaneutral/dnfvault/pkg/model"
	"github.com/deltaneutral/dnfvault/pkg/vault"
)

// NewPurchasesCmd creates the purchases listing command.
func NewPurchasesCmd() *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "purchases",
		Short: "List your purchases",
		Long:  "List the purchases on your account, optionally with their files.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, model.KindPurchase, showFiles)
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "also list the files in each purchase")

	return cmd
}

// NewGroupsCmd creates the groups listing command.
func NewGroupsCmd() *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List your data groups",
		Long:  "List the data groups on your account, optionally with their files.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, model.KindGroup, showFiles)
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "also list the files in each group")

	return cmd
}

func runList(cmd *cobra.Command, kind model.ContainerKind, showFiles bool) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}

	var containers []model.Container
	if kind == model.KindPurchase {
		containers, err = client.ListPurchases(ctx)
	} else {
		containers, err = client.ListGroups(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", kind, err)
	}

	if len(containers) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s found\n", kind)
		return nil
	}

	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "ID\tNAME")
	_, _ = fmt.Fprintln(tabWriter, "--\t----")
	for _, c := range containers {
		_, _ = fmt.Fprintf(tabWriter, "%d\t%s\n", c.ID, c.Name)
	}
	if err := tabWriter.Flush(); err != nil {
		return err
	}

	if !showFiles {
		return nil
	}

	for _, c := range containers {
		if err := printFiles(cmd, client, c); err != nil {
			return err
		}
	}
	return nil
}

func printFiles(cmd *cobra.Command, client *vault.Client, container model.Container) error {
	files, err := client.ListFiles(cmd.Context(), container)
	if err != nil {
		return fmt.Errorf("failed to list files for %s %d: %w", container.Kind, container.ID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s (%d files)\n", container.Name, len(files))

	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "NAME\tSIZE\tCREATED")
	for _, f := range files {
		_, _ = fmt.Fprintf(tabWriter, "%s\t%d\t%s\n", f.DisplayName, f.FileSize, f.CreatedAt)
	}
	return tabWriter.Flush()
}
