package cmd

import (
	"github.com/spf13/cobra"

	"omniflow/internal/script"
)

var (
	gospelReq script.GospelRequest
	nicheReq  script.NicheRequest
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate production plans from the template libraries",
}

var planGospelCmd = &cobra.Command{
	Use:   "gospel",
	Short: "Generate a gospel music video plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := script.BuildGospelPlan(gospelReq)
		if err != nil {
			return err
		}
		return printJSON(plan)
	},
}

var planNicheCmd = &cobra.Command{
	Use:   "niche <niche> <topic>",
	Short: "Generate a niche video plan (tech, tutorial, finance, ...)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := nicheReq
		req.Niche, req.Topic = args[0], args[1]
		plan, err := script.GenerateNiche(req)
		if err != nil {
			return err
		}
		return printJSON(plan)
	},
}

func init() {
	g := planGospelCmd.Flags()
	g.StringVarP(&gospelReq.Title, "title", "t", "", "Song title")
	g.StringVar(&gospelReq.Theme, "theme", "", "Gospel theme key (default worship)")
	g.StringVar(&gospelReq.Style, "style", "", "Music style key")
	g.IntVar(&gospelReq.Duration, "duration", 0, "Duration in minutes")
	g.StringVar(&gospelReq.Artist, "artist", "", "Artist name")
	g.BoolVar(&gospelReq.Testimony, "testimony", false, "Include a personal testimony section")

	n := planNicheCmd.Flags()
	n.StringVarP(&nicheReq.Title, "title", "t", "", "Title (tutorials)")
	n.StringVar(&nicheReq.Subject, "subject", "", "Subject (commentary)")
	n.IntVar(&nicheReq.Duration, "duration", 0, "Duration in minutes")
	n.IntVar(&nicheReq.Count, "count", 0, "Step count (tutorials)")

	planCmd.AddCommand(planGospelCmd)
	planCmd.AddCommand(planNicheCmd)
	rootCmd.AddCommand(planCmd)
}
