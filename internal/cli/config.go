package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deltaneutral/dnfvault/internal/logger"
	"github.com/deltaneutral/dnfvault/pkg/config"
	"github.com/deltaneutral/dnfvault/pkg/errors"
)

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View and modify dnfv configuration settings",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetCmd(),
		newConfigGetCmd(),
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current configuration settings",
		RunE:  runConfigShow,
	}

	return cmd
}

// Number of arguments expected by the set command.
const setCommandArgs = 2

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration key to a specific value",
		Args:  cobra.ExactArgs(setCommandArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Long:  "Get the value of a specific configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  "Create a default configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration file")

	return cmd
}

func runConfigShow(*cobra.Command, []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	settingsMap := cfg.ToMap()
	keys := make([]string, 0, len(settingsMap))
	for key := range settingsMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "SETTING\tVALUE")
	_, _ = fmt.Fprintln(tabWriter, "-------\t-----")
	for _, key := range keys {
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\n", key, settingsMap[key])
	}
	_ = tabWriter.Flush()

	// Never print the password.
	if cfg.HasCredentials() {
		fmt.Printf("\nCredentials: configured for %s\n", cfg.Auth.Email)
	} else {
		fmt.Println("\nCredentials: not configured")
	}

	return nil
}

func runConfigSet(key, value string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set configuration value: %w", err)
	}

	configPath := getConfigPath()
	if err := cfg.SaveConfig(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logger.Success("Configuration updated", logger.Fields{"key": key})
	return nil
}

func runConfigGet(key string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	value, err := cfg.GetValue(key)
	if err != nil {
		return fmt.Errorf("failed to get configuration value: %w", err)
	}

	fmt.Println(value)
	return nil
}

func runConfigInit(force bool) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s (use --force to overwrite): %w", configPath, errors.ErrConfigFileExists)
	}

	defaultConfig := config.DefaultConfig()
	if err := defaultConfig.SaveConfig(configPath); err != nil {
		return fmt.Errorf("failed to save default configuration: %w", err)
	}

	logger.Success("Configuration file created", logger.Fields{"path": configPath})
	return nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err.Error()})
		return ""
	}
	return defaultPath
}
