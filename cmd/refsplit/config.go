package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/refsplit/internal/config"
)

var errConfigFile = errors.New("config file")

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after applying the config file and REFSPLIT_*
environment variables.

Examples:
  refsplit config show
  REFSPLIT_REF_TYPE=N refsplit config show`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.Path()
		}
		if humanOutput {
			fmt.Println(path)
			return nil
		}
		return outputJSON(map[string]string{"path": path})
	},
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadStyle()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// loadStyle reads the config file and overlays the environment.
func loadStyle() (config.Style, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", errConfigFile, err)
	}
	return cfg.ApplyEnv(os.Getenv)
}
