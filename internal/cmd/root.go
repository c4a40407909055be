package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "activity-reports",
		Short: "Activity reports - activity logging with LLM-generated period reports",
		Long:  "Logs timestamped activities and periodically synthesizes daily to annual reports, with narrative insight from an OpenAI-compatible generation endpoint",
	}

	rootCmd.AddCommand(NewStartCmd())
	rootCmd.AddCommand(NewRecordCmd())
	rootCmd.AddCommand(NewQueryCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}
