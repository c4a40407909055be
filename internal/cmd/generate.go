package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"activity-reports/internal/render"
	"activity-reports/internal/report"
)

var (
	generateConfigPath string
	generateKind       string
	generateDate       string
	generateForce      bool
	generateOut        string
)

func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report for a period",
		Long:  "Generate the report for the period containing the given date. Missing daily reports inside the period are generated first; --force regenerates the target report even when cached.",
		RunE:  runGenerate,
	}

	cmd.Flags().StringVarP(&generateConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&generateKind, "kind", "k", "daily", "Period kind (daily, weekly, monthly, quarterly, annual)")
	cmd.Flags().StringVarP(&generateDate, "date", "d", "", "A date inside the period (YYYY-MM-DD), defaults to yesterday")
	cmd.Flags().BoolVarP(&generateForce, "force", "f", false, "Regenerate even if a cached report exists")
	cmd.Flags().StringVarP(&generateOut, "out", "o", "", "Write the rendered markdown report to this file")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	kind, err := report.ParseKind(generateKind)
	if err != nil {
		return err
	}

	target := time.Now().AddDate(0, 0, -1)
	if generateDate != "" {
		target, err = time.ParseInLocation("2006-01-02", generateDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date (want YYYY-MM-DD): %w", err)
		}
	}

	a, err := newApp(generateConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	key := report.NewPeriodKey(kind, target)
	rep := a.ctrl.RunKey(context.Background(), key, generateForce)

	fmt.Printf("Report %s: %d minutes across %d groups\n", key, rep.Summary.TotalMinutes, len(rep.Summary.MinutesByGroup))

	if generateOut != "" {
		doc, err := render.NewMarkdown().Render(rep)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		if err := os.WriteFile(generateOut, doc, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Rendered report written to %s\n", generateOut)
	}

	return nil
}
