package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"activity-reports/internal/store"
)

var (
	recordConfigPath  string
	recordGroup       string
	recordCategory    string
	recordDuration    int
	recordDescription string
	recordTimestamp   string
)

func NewRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Log an activity",
		RunE:  runRecord,
	}

	cmd.Flags().StringVarP(&recordConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&recordGroup, "group", "g", "", "Group label (required)")
	cmd.Flags().StringVar(&recordCategory, "category", "", "Category label (optional, reports recompute it from the taxonomy)")
	cmd.Flags().IntVarP(&recordDuration, "duration", "m", 0, "Duration in minutes (required, positive)")
	cmd.Flags().StringVarP(&recordDescription, "description", "d", "", "What was done")
	cmd.Flags().StringVarP(&recordTimestamp, "time", "t", "", "Timestamp (YYYY-MM-DD HH:MM), defaults to now")

	cmd.MarkFlagRequired("group")
	cmd.MarkFlagRequired("duration")

	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	if recordDuration <= 0 {
		return fmt.Errorf("duration must be a positive number of minutes")
	}

	timestamp := time.Now()
	if recordTimestamp != "" {
		var err error
		timestamp, err = time.ParseInLocation("2006-01-02 15:04", recordTimestamp, time.Local)
		if err != nil {
			return fmt.Errorf("invalid timestamp (want YYYY-MM-DD HH:MM): %w", err)
		}
	}

	a, err := newApp(recordConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	rec := &store.ActivityRecord{
		ID:              uuid.New().String(),
		Group:           recordGroup,
		Category:        recordCategory,
		Timestamp:       timestamp,
		DurationMinutes: recordDuration,
		Description:     recordDescription,
	}

	if err := a.store.SaveActivity(rec); err != nil {
		return err
	}

	fmt.Printf("Recorded %d minutes for %s (%s)\n", rec.DurationMinutes, rec.Group, rec.ID)
	return nil
}
