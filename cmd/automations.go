package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"omniflow/internal/automation"
	"omniflow/internal/distribution"
)

var (
	automationsDir   string
	automationsPrint string
)

var automationsCmd = &cobra.Command{
	Use:   "automations",
	Short: "Write n8n and Make workflow templates for import",
	RunE:  runAutomations,
}

var uploadStatusCmd = &cobra.Command{
	Use:   "upload-status <upload-id>",
	Short: "Show the status of a webhook upload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(distribution.UploadStatus(args[0]))
	},
}

func init() {
	automationsCmd.Flags().StringVarP(&automationsDir, "dir", "d", "", "Output directory (default from config)")
	automationsCmd.Flags().StringVar(&automationsPrint, "print", "", "Print one template instead of writing files")
	automationsCmd.AddCommand(uploadStatusCmd)
	rootCmd.AddCommand(automationsCmd)
}

func runAutomations(cmd *cobra.Command, args []string) error {
	if automationsPrint != "" {
		tmpl, err := automation.Lookup(automationsPrint)
		if err != nil {
			return err
		}
		return printJSON(tmpl)
	}

	dir := automationsDir
	if dir == "" {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		dir = cfg.Production.AutomationsDir
	}

	paths, err := automation.SaveAll(dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(successStyle.Render("✓ " + p))
	}
	fmt.Println(infoStyle.Render("Import these into n8n or Make, then set YOUTUBE_WEBHOOK_URL."))
	return nil
}
