package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	configCmdPath  string
	configEndpoint string
	configModel    string
)

func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update stored settings",
	}

	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())

	return configCmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings",
		RunE:  runConfigShow,
	}
	cmd.Flags().StringVarP(&configCmdPath, "config", "c", "", "Path to config file")
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update generation endpoint or model",
		RunE:  runConfigSet,
	}
	cmd.Flags().StringVarP(&configCmdPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&configEndpoint, "endpoint", "", "Generation endpoint base URL")
	cmd.Flags().StringVar(&configModel, "model", "", "Generation model name")
	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(configCmdPath)
	if err != nil {
		return err
	}
	defer a.Close()

	settings, err := a.store.GetSettings()
	if err != nil {
		return err
	}
	if settings == nil {
		fmt.Println("No settings stored yet.")
		return nil
	}

	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configEndpoint == "" && configModel == "" {
		return fmt.Errorf("nothing to update: pass --endpoint and/or --model")
	}

	a, err := newApp(configCmdPath)
	if err != nil {
		return err
	}
	defer a.Close()

	settings, err := a.store.GetSettings()
	if err != nil {
		return err
	}
	if settings == nil {
		return fmt.Errorf("no settings stored yet")
	}

	if configEndpoint != "" {
		settings.GenerationEndpoint = configEndpoint
	}
	if configModel != "" {
		settings.GenerationModel = configModel
	}

	if err := a.store.SaveSettings(settings); err != nil {
		return err
	}

	fmt.Println("Settings updated. Endpoint and model changes apply on next start.")
	return nil
}
