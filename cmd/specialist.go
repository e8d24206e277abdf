package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"omniflow/internal/app"
	"omniflow/internal/llm"
)

var (
	specialistTitle   string
	specialistNiche   string
	specialistStyle   string
	specialistMinutes int
	specialistCount   int
	specialistTarget  int
	specialistClaims  []string
	specialistEvents  []string
	specialistNames   []string
)

var specialistCmd = &cobra.Command{
	Use:   "specialist",
	Short: "Focused AI roles: analyst, poet, story, script developer, historian",
}

func init() {
	trending := &cobra.Command{
		Use:   "trending <niche>",
		Short: "Find trending topics in a niche",
		Args:  cobra.ExactArgs(1),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			topics, err := s.TrendingTopics(cmd.Context(), args[0], specialistCount)
			if err != nil {
				return err
			}
			return printJSON(topics)
		}),
	}
	trending.Flags().IntVarP(&specialistCount, "count", "n", 5, "Number of topics")

	viral := &cobra.Command{
		Use:   "viral [script]",
		Short: "Estimate a video's viral potential",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			text, err := scriptText(args)
			if err != nil {
				return err
			}
			res, err := s.ViralScore(cmd.Context(), specialistTitle, text, specialistNiche)
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}
	viral.Flags().StringVarP(&specialistTitle, "title", "t", "", "Video title")
	viral.Flags().StringVar(&specialistNiche, "niche", "general", "Content niche")

	poetic := &cobra.Command{
		Use:   "poetic <topic>",
		Short: "Write a poetic narration",
		Args:  cobra.ExactArgs(1),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			text, err := s.PoeticNarration(cmd.Context(), args[0], specialistStyle)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		}),
	}
	poetic.Flags().StringVar(&specialistStyle, "style", "inspirational", "Poetic style")

	arc := &cobra.Command{
		Use:   "story-arc <premise>",
		Short: "Lay out a timed story arc",
		Args:  cobra.ExactArgs(1),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			res, err := s.StoryArc(cmd.Context(), args[0], specialistMinutes)
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}

	character := &cobra.Command{
		Use:   "character <description>",
		Short: "Develop a character's journey",
		Args:  cobra.ExactArgs(1),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			res, err := s.CharacterDevelopment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}

	refine := &cobra.Command{
		Use:   "refine [script]",
		Short: "Refine a script with timing and production notes",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			text, err := scriptText(args)
			if err != nil {
				return err
			}
			res, err := s.RefineScript(cmd.Context(), text, specialistTarget)
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}
	refine.Flags().IntVar(&specialistTarget, "target", 600, "Target duration in seconds")

	comedic := &cobra.Command{
		Use:   "comedic [script]",
		Short: "Add humor and comedic timing",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			text, err := scriptText(args)
			if err != nil {
				return err
			}
			out, err := s.ComedicTiming(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}),
	}

	verify := &cobra.Command{
		Use:   "verify <topic>",
		Short: "Check historical claims, from --claim or a script --file",
		Args:  cobra.ExactArgs(1),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			claims := specialistClaims
			if len(claims) == 0 && scriptFile != "" {
				text, err := scriptText(nil)
				if err != nil {
					return err
				}
				claims = llm.Claims(text, 10)
			}
			if len(claims) == 0 {
				return errors.New("provide --claim or --file")
			}
			res, err := s.VerifyHistory(cmd.Context(), args[0], claims)
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}
	verify.Flags().StringArrayVar(&specialistClaims, "claim", nil, "Claim to verify, repeatable")

	history := &cobra.Command{
		Use:   "history <period> <topic>",
		Short: "Write a historically accurate script",
		Args:  cobra.ExactArgs(2),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			text, err := s.HistoricalNarrative(cmd.Context(), args[0], args[1], specialistMinutes)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		}),
	}

	timeline := &cobra.Command{
		Use:   "timeline",
		Short: "Suggest visuals for a timeline of events",
		Args:  cobra.NoArgs,
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, _ []string) error {
			events, err := parseEvents(specialistEvents)
			if err != nil {
				return err
			}
			res, err := s.TimelineGuide(cmd.Context(), events)
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}
	timeline.Flags().StringArrayVar(&specialistEvents, "event", nil, `Event as "date: description", repeatable`)

	combine := &cobra.Command{
		Use:   "combine [script]",
		Short: "Run several specialists over one script",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSpecialists(func(cmd *cobra.Command, s llm.Specialists, args []string) error {
			text, err := scriptText(args)
			if err != nil {
				return err
			}
			res, err := llm.Combine(cmd.Context(), s, llm.CombineRequest{
				Script: text,
				Title:  specialistTitle,
				Niche:  specialistNiche,
			}, specialistNames)
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}
	combine.Flags().StringSliceVar(&specialistNames, "use", []string{llm.SpecialistAnalyst, llm.SpecialistDeveloper},
		"Specialists to run: "+strings.Join(llm.SpecialistNames, ", "))
	combine.Flags().StringVarP(&specialistTitle, "title", "t", "", "Video title")
	combine.Flags().StringVar(&specialistNiche, "niche", "general", "Content niche")

	for _, c := range []*cobra.Command{arc, history} {
		c.Flags().IntVar(&specialistMinutes, "minutes", 10, "Target duration in minutes")
	}

	specialistCmd.AddCommand(trending, viral, poetic, arc, character, refine, comedic, verify, history, timeline, combine)
	scriptCmd.AddCommand(specialistCmd)
}

type specialistFunc func(cmd *cobra.Command, s llm.Specialists, args []string) error

func withSpecialists(fn specialistFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		s, err := app.NewSpecialists(cfg)
		if err != nil {
			return err
		}
		if s == nil {
			return errors.New("GROQ_API_KEY must be set for AI specialists")
		}
		return fn(cmd, s, args)
	}
}

func parseEvents(entries []string) ([]llm.TimelineEvent, error) {
	if len(entries) == 0 {
		return nil, errors.New(`provide at least one --event "date: description"`)
	}
	events := make([]llm.TimelineEvent, 0, len(entries))
	for _, entry := range entries {
		date, event, ok := strings.Cut(entry, ":")
		if !ok {
			events = append(events, llm.TimelineEvent{Event: strings.TrimSpace(entry)})
			continue
		}
		events = append(events, llm.TimelineEvent{Date: strings.TrimSpace(date), Event: strings.TrimSpace(event)})
	}
	return events, nil
}
