package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/tidyroom/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tidyroom",
	Short: "Room cleanliness classifier",
	Long: `tidyroom classifies a photo of a room as clean or messy, keeps a log
of every analysis and summarizes it.

Configuration is read from --config, CONFIG_PATH or ./config.yaml;
without any of them the built-in defaults are used.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.FromEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
