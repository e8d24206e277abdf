package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"omniflow/internal/distribution/youtube"
	"omniflow/pkg/config"
)

var youtubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Benchmark reference videos through the YouTube Data API",
}

var youtubeAnalyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Turn a reference video into production targets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		ref, err := a.AnalyzeReference(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(ref)
	},
}

var youtubeCompareCmd = &cobra.Command{
	Use:   "compare <url-or-id>...",
	Short: "Compare engagement across videos and extract best practices",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		ids := make([]string, len(args))
		for i, arg := range args {
			ids[i] = arg
			if id, ok := youtube.VideoIDFromURL(arg); ok {
				ids[i] = id
			}
		}
		res, err := a.Compare(cmd.Context(), ids)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	youtubeCmd.AddCommand(youtubeAnalyzeCmd, youtubeCompareCmd)
	rootCmd.AddCommand(youtubeCmd)
}

func newAnalyzer(cmd *cobra.Command) (*youtube.Analyzer, error) {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	return analyzerFor(cfg)
}

func analyzerFor(cfg *config.Config) (*youtube.Analyzer, error) {
	if cfg.YouTubeClientID == "" || cfg.YouTubeClientSecret == "" {
		return nil, errors.New("YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET must be set in .env")
	}
	auth := youtube.NewAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTube.TokenPath)
	if !auth.IsAuthenticated() {
		return nil, fmt.Errorf("not authenticated with YouTube, run: omniflow auth youtube")
	}
	return youtube.NewAnalyzer(auth), nil
}
