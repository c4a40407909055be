package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	queryConfigPath string
	queryFrom       string
	queryTo         string
)

func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List recorded activities in a date range",
		RunE:  runQuery,
	}

	cmd.Flags().StringVarP(&queryConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&queryFrom, "from", "", "Start date (YYYY-MM-DD), defaults to 7 days ago")
	cmd.Flags().StringVar(&queryTo, "to", "", "End date inclusive (YYYY-MM-DD), defaults to today")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	now := time.Now()
	from := now.AddDate(0, 0, -7)
	to := now

	var err error
	if queryFrom != "" {
		from, err = time.ParseInLocation("2006-01-02", queryFrom, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if queryTo != "" {
		to, err = time.ParseInLocation("2006-01-02", queryTo, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
	}

	a, err := newApp(queryConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	y, m, d := to.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
	records, err := a.store.ListActivities(from, end)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No activities recorded in this range.")
		return nil
	}

	total := 0
	for _, rec := range records {
		total += rec.DurationMinutes
		fmt.Printf("%s  %-30s %4d min  %s\n",
			rec.Timestamp.Format("2006-01-02 15:04"), rec.Group, rec.DurationMinutes, rec.Description)
	}
	fmt.Printf("\n%d activities, %d minutes total\n", len(records), total)

	return nil
}
