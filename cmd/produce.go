package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"omniflow/internal/app"
)

var (
	produceScriptFile string
	produceRequest    app.Request
	produceNoEnhance  bool
)

var produceCmd = &cobra.Command{
	Use:   "produce [script]",
	Short: "Produce a video from a script",
	Long: `Run the full production pipeline: enhance, visuals, voice, compose and
optionally publish. The script is taken from the argument or --file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProduce,
}

func init() {
	f := produceCmd.Flags()
	f.StringVarP(&produceScriptFile, "file", "f", "", "Read the script from a file")
	f.StringVarP(&produceRequest.ProjectName, "name", "n", "", "Project name (defaults to the title)")
	f.StringVarP(&produceRequest.Title, "title", "t", "", "Video title")
	f.StringVarP(&produceRequest.Description, "description", "d", "", "Video description")
	f.StringSliceVar(&produceRequest.Tags, "tags", nil, "Comma separated tags (suggested when empty)")
	f.StringVar(&produceRequest.Channel, "channel", "", "Channel preset key")
	f.StringVar(&produceRequest.Style, "style", "", "Video style key (suggested when empty)")
	f.StringVar(&produceRequest.Voice, "voice", "", "Voice name or ElevenLabs voice ID")
	f.StringVar(&produceRequest.Niche, "niche", "", "Niche used for tag suggestions")
	f.IntVar(&produceRequest.DurationSeconds, "duration", 0, "Target duration in seconds")
	f.BoolVar(&produceNoEnhance, "no-enhance", false, "Skip LLM script enhancement")
	f.BoolVarP(&produceRequest.Publish, "publish", "p", false, "Publish after composing")
	f.StringVar(&produceRequest.PublishAt, "publish-at", "", "Schedule publication (RFC3339, YouTube method only)")
	rootCmd.AddCommand(produceCmd)
}

func runProduce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req := produceRequest
	switch {
	case len(args) == 1:
		req.Script = args[0]
	case produceScriptFile != "":
		data, err := os.ReadFile(produceScriptFile)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		req.Script = string(data)
	default:
		return errors.New("please provide a script argument or --file")
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	req.Enhance = cfg.Production.Enhance && !produceNoEnhance

	orch, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = orch.Close() }()

	slog.Info("Producing video...", "title", req.Title, "publish", req.Publish)
	res, err := orch.Produce(ctx, req)
	if err != nil {
		if res != nil {
			slog.Error("Production failed", "dir", res.Dir, "log", res.Log)
		}
		return err
	}

	slog.Info("Video produced", "video", res.Video, "frames", len(res.Frames), "dir", res.Dir)
	if res.Publish != nil {
		if res.Publish.Error != "" {
			slog.Warn("Publishing failed", "error", res.Publish.Error)
		} else {
			slog.Info("Published", "platform", res.Publish.Platform, "id", res.Publish.ID, "url", res.Publish.URL)
		}
	}
	return nil
}
