package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"activity-reports/internal/logger"
)

var startConfigPath string

func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the report scheduler until interrupted",
		RunE:  runStart,
	}

	cmd.Flags().StringVarP(&startConfigPath, "config", "c", "", "Path to config file")

	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := newApp(startConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ctrl.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.GetLogger().Info("Activity reports scheduler started")
	fmt.Println("Scheduler running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.GetLogger().Info("Shutting down, waiting for running jobs...")
	if err := a.ctrl.Stop(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}

	return nil
}
