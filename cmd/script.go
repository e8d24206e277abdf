package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"omniflow/internal/app"
	"omniflow/internal/llm"
	"omniflow/internal/script"
)

var (
	scriptFile       string
	enhanceDuration  int
	enhanceTone      string
	enhanceStyle     string
	titleCount       int
	shortsMaxSeconds int
	dialogueTurns    int
	dialogueCast     []string
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Script intelligence powered by Groq",
}

func init() {
	enhance := &cobra.Command{
		Use:   "enhance [script]",
		Short: "Rewrite a script for engagement",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnhancer(func(cmd *cobra.Command, e llm.Enhancer, text string) error {
			res, err := e.Enhance(cmd.Context(), text, llm.EnhanceOptions{
				DurationSeconds: enhanceDuration,
				Tone:            enhanceTone,
				Style:           enhanceStyle,
				Hook:            true,
				CTA:             true,
			})
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}
	enhance.Flags().IntVar(&enhanceDuration, "duration", 600, "Target duration in seconds")
	enhance.Flags().StringVar(&enhanceTone, "tone", "professional", "Narration tone")
	enhance.Flags().StringVar(&enhanceStyle, "style", "documentary", "Script style")

	titles := &cobra.Command{
		Use:   "titles [script]",
		Short: "Suggest title variations",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnhancer(func(cmd *cobra.Command, e llm.Enhancer, text string) error {
			titles, err := e.Titles(cmd.Context(), text, titleCount)
			if err != nil {
				return err
			}
			for i, t := range titles {
				fmt.Printf("%d. %s\n", i+1, t)
			}
			return nil
		}),
	}
	titles.Flags().IntVarP(&titleCount, "count", "n", 5, "Number of titles")

	analyze := &cobra.Command{
		Use:   "analyze [script]",
		Short: "Score a script's engagement potential",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnhancer(func(cmd *cobra.Command, e llm.Enhancer, text string) error {
			res, err := e.Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}

	shorts := &cobra.Command{
		Use:   "shorts [script]",
		Short: "Condense a script into a YouTube Short",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnhancer(func(cmd *cobra.Command, e llm.Enhancer, text string) error {
			res, err := e.Shorts(cmd.Context(), text, shortsMaxSeconds)
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}
	shorts.Flags().IntVar(&shortsMaxSeconds, "max-seconds", 60, "Maximum Short length")

	dialogue := &cobra.Command{
		Use:   "dialogue <topic>",
		Short: "Write a multi-character dialogue and split it into scenes",
		Args:  cobra.ExactArgs(1),
		RunE: withEnhancer(func(cmd *cobra.Command, e llm.Enhancer, topic string) error {
			cast, err := parseCast(dialogueCast)
			if err != nil {
				return err
			}
			lines, err := e.Dialogue(cmd.Context(), topic, cast, dialogueTurns)
			if err != nil {
				return err
			}
			return printJSON(script.DialogueScenes(lines, nil))
		}),
	}
	dialogue.Flags().IntVar(&dialogueTurns, "turns", 8, "Number of dialogue turns")
	dialogue.Flags().StringSliceVar(&dialogueCast, "cast", []string{"Host:curious", "Expert:knowledgeable"}, "Characters as name:personality")

	scenes := &cobra.Command{
		Use:   "scenes [dialogue]",
		Short: "Split a written \"Speaker: line\" dialogue into scenes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := scriptText(args)
			if err != nil {
				return err
			}
			lines := script.ParseDialogue(text)
			if len(lines) == 0 {
				return errors.New("no \"Speaker: line\" dialogue found")
			}
			fmt.Println(infoStyle.Render("Speakers: " + strings.Join(script.Speakers(lines), ", ")))
			return printJSON(script.DialogueScenes(lines, nil))
		},
	}

	scriptCmd.PersistentFlags().StringVarP(&scriptFile, "file", "f", "", "Read the script from a file")
	scriptCmd.AddCommand(enhance, titles, analyze, shorts, dialogue, scenes)
	rootCmd.AddCommand(scriptCmd)
}

type enhancerFunc func(cmd *cobra.Command, e llm.Enhancer, text string) error

func withEnhancer(fn enhancerFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		text, err := scriptText(args)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		e, err := app.NewLLM(cfg)
		if err != nil {
			return err
		}
		if e == nil {
			return errors.New("GROQ_API_KEY must be set for script intelligence")
		}
		return fn(cmd, e, text)
	}
}

func scriptText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if scriptFile == "" {
		return "", errors.New("please provide a script argument or --file")
	}
	data, err := os.ReadFile(scriptFile)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}

func parseCast(entries []string) ([]llm.Character, error) {
	cast := make([]llm.Character, 0, len(entries))
	for _, entry := range entries {
		name, personality, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid character %q, want name:personality", entry)
		}
		cast = append(cast, llm.Character{Name: strings.TrimSpace(name), Personality: strings.TrimSpace(personality)})
	}
	return cast, nil
}
