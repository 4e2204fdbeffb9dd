package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/airplane-mode/internal/infra"
)

var (
	cfgFile string

	cfg    *infra.Config
	logger *zap.Logger
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "airplane-mode",
	Short: "Policy gate that cuts a site off from external network traffic",
	Long: `airplane-mode keeps a site working offline. While the mode is on, outbound
HTTP and gRPC requests to non-local hosts are refused, external styles and
scripts are dropped, remote avatars are replaced with a blank placeholder
and background update checks are unscheduled.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = infra.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		logger, err = infra.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./configs/config.yaml)")
}
