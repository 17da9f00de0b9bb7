package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haconnect/haconnect-go/internal/logs"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	logToFile  bool
	logDir     string

	version = "v0.1.0" // Injected by -ldflags during build
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "haconnect",
		Short:   "Home Assistant connection manager - multi-endpoint configurations, OAuth and token auth, entity control",
		Version: version,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logs.SetupCommandLogger(logLevel, logToFile, logDir)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (default: ~/.haconnect/config.json)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory path (default: ~/.haconnect)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log-to-file", false, "Enable logging to file in standard OS location")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Custom log directory path")

	rootCmd.AddCommand(GetAuthCommand())
	rootCmd.AddCommand(GetConfigCommand())
	rootCmd.AddCommand(GetEntitiesCommand())
	rootCmd.AddCommand(GetToggleCommand())
	rootCmd.AddCommand(GetOnCommand())
	rootCmd.AddCommand(GetOffCommand())
	rootCmd.AddCommand(GetCallCommand())
	rootCmd.AddCommand(GetHistoryCommand())
	rootCmd.AddCommand(GetLogbookCommand())
	rootCmd.AddCommand(GetTestCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
