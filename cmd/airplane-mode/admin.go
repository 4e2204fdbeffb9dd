package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Create the setting with value \"on\" unless it already exists",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withGate(cmd.Context(), func(a *app) error {
			if err := a.gate.Install(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed, mode: %s\n", a.gate.Mode(cmd.Context()))
			return nil
		})
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Delete the setting; the default mode (on) applies afterwards",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withGate(cmd.Context(), func(a *app) error {
			if err := a.gate.Uninstall(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "uninstalled")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current mode",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withGate(cmd.Context(), func(a *app) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.gate.Mode(cmd.Context()))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(installCmd, uninstallCmd, statusCmd)
}

// withGate собирает зависимости на время одной команды.
func withGate(ctx context.Context, fn func(a *app) error) error {
	a, err := buildApp(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
