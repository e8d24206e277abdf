package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"omniflow/internal/catalog"
	"omniflow/internal/speech/elevenlabs"
)

type templateKind struct {
	keys   func() []string
	lookup func(key string) (any, error)
}

var templateKinds = map[string]templateKind{
	"channel": {
		keys:   catalog.ChannelKeys,
		lookup: func(k string) (any, error) { return catalog.LookupChannel(k) },
	},
	"expanded": {
		keys:   catalog.ExpandedChannelKeys,
		lookup: func(k string) (any, error) { return catalog.LookupExpandedChannel(k) },
	},
	"style": {
		keys:   catalog.StyleKeys,
		lookup: func(k string) (any, error) { return catalog.LookupStyle(k) },
	},
	"niche": {
		keys:   catalog.NicheKeys,
		lookup: func(k string) (any, error) { return catalog.LookupNiche(k) },
	},
	"gospel-theme": {
		keys:   catalog.GospelThemeKeys,
		lookup: func(k string) (any, error) { return catalog.LookupGospelTheme(k) },
	},
	"gospel-style": {
		keys:   catalog.GospelStyleKeys,
		lookup: func(k string) (any, error) { return catalog.LookupGospelStyle(k) },
	},
}

func templateKindNames() []string {
	names := make([]string, 0, len(templateKinds))
	for name := range templateKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupKind(name string) (templateKind, error) {
	k, ok := templateKinds[name]
	if !ok {
		return templateKind{}, &catalog.UnknownKeyError{Kind: "Template kind", Key: name, Valid: templateKindNames()}
	}
	return k, nil
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Browse the channel, style, niche and gospel template libraries",
}

var templatesListCmd = &cobra.Command{
	Use:   "list [kind]",
	Short: "List template keys, optionally for one kind",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := templateKindNames()
		if len(args) == 1 {
			if _, err := lookupKind(args[0]); err != nil {
				return err
			}
			names = args
		}
		for _, name := range names {
			fmt.Println(titleStyle.Render(name))
			for _, key := range templateKinds[name].keys() {
				fmt.Println("  " + key)
			}
		}
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <kind> <key>",
	Short: "Show one template as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := lookupKind(args[0])
		if err != nil {
			return err
		}
		v, err := kind.lookup(args[1])
		if err != nil {
			return err
		}
		return printJSON(v)
	},
}

var templatesGuidelinesCmd = &cobra.Command{
	Use:   "guidelines",
	Short: "Show the content guidelines for AI generated channels",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, g := range catalog.Guidelines() {
			fmt.Println(titleStyle.Render(g.Category))
			for _, item := range g.Items {
				fmt.Println("  - " + item)
			}
		}
		return nil
	},
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "Video style helpers",
}

var stylesSuggestCmd = &cobra.Command{
	Use:   "suggest <script>",
	Short: "Suggest a video style for a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := catalog.SuggestStyle(args[0])
		style, err := catalog.LookupStyle(key)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Suggested style: %s (%s)", style.Name, key)))
		fmt.Println(infoStyle.Render(style.Description))
		return nil
	},
}

var voicesRemote bool

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List narrator voices",
	RunE:  runVoices,
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesGuidelinesCmd)
	rootCmd.AddCommand(templatesCmd)

	stylesCmd.AddCommand(stylesSuggestCmd)
	rootCmd.AddCommand(stylesCmd)

	voicesCmd.Flags().BoolVarP(&voicesRemote, "remote", "r", false, "Also list voices from the ElevenLabs account")
	rootCmd.AddCommand(voicesCmd)
}

func runVoices(cmd *cobra.Command, args []string) error {
	voices := catalog.Voices()
	names := make([]string, 0, len(voices))
	for name := range voices {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println(titleStyle.Render("Preset voices"))
	for _, name := range names {
		v := voices[name]
		fmt.Printf("  %-10s %s  %s\n", name, v.ID, v.Description)
	}

	if !voicesRemote {
		return nil
	}

	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if len(cfg.ElevenLabsAPIKeys) == 0 {
		return fmt.Errorf("ELEVENLABS_API_KEY must be set to list account voices")
	}

	remote, err := elevenlabs.NewClient(cfg.ElevenLabsAPIKeys, cfg.ElevenLabs).Voices(ctx)
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render("\nElevenLabs voices"))
	for _, v := range remote {
		fmt.Printf("  %-20s %s  %s\n", v.Name, v.ID, v.Category)
	}
	return nil
}
