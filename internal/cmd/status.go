package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"activity-reports/internal/report"
)

var statusConfigPath string

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show record counts and cached reports",
		RunE:  runStatus,
	}

	cmd.Flags().StringVarP(&statusConfigPath, "config", "c", "", "Path to config file")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(statusConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.store.CountActivities()
	if err != nil {
		return err
	}
	fmt.Printf("Activities recorded: %d\n", count)

	fmt.Println("Cached reports:")
	for _, kind := range report.Kinds {
		starts, err := a.store.ListReportKeys(string(kind))
		if err != nil {
			return err
		}
		if len(starts) == 0 {
			fmt.Printf("  %-10s none\n", kind)
			continue
		}
		fmt.Printf("  %-10s %d (latest %s)\n", kind, len(starts), starts[0].Format("2006-01-02"))
	}

	return nil
}
