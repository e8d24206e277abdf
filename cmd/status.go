package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"omniflow/internal/app"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [project]",
	Short: "Show production status, or list projects",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the raw metadata")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	base := cfg.Production.OutputDir

	if len(args) == 0 {
		projects, err := app.Projects(base)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println(infoStyle.Render("No projects in " + base))
			return nil
		}
		for _, p := range projects {
			fmt.Println(p)
		}
		return nil
	}

	dir, err := app.FindProject(base, args[0])
	if err != nil {
		return err
	}
	meta, err := app.Status(dir)
	if err != nil {
		return err
	}
	if statusJSON {
		return printJSON(meta)
	}

	fmt.Println(titleStyle.Render(meta.ProjectName))
	fmt.Println(infoStyle.Render("  " + dir))

	stages := make([]string, 0, len(meta.Stages))
	for name := range meta.Stages {
		stages = append(stages, name)
	}
	sort.Strings(stages)

	for _, name := range stages {
		st := meta.Stages[name]
		line := fmt.Sprintf("  %-8s %s", name, st.Status)
		switch st.Status {
		case app.StatusSuccess:
			fmt.Println(successStyle.Render(line))
		case app.StatusFailed:
			fmt.Println(errorStyle.Render(line + ": " + st.Error))
		default:
			fmt.Println(warnStyle.Render(line))
		}
	}

	if meta.Result != nil && meta.Result.Video != "" {
		fmt.Println(infoStyle.Render("  video: " + meta.Result.Video))
	}
	return nil
}
