package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChannelsComplete(t *testing.T) {
	keys := ChannelKeys()
	if len(keys) != 4 {
		t.Fatalf("ChannelKeys() = %v, want 4 entries", keys)
	}
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			c, err := LookupChannel(key)
			if err != nil {
				t.Fatalf("LookupChannel(%q) error: %v", key, err)
			}
			for name, v := range map[string]string{
				"name":        c.Name,
				"description": c.Description,
				"visualStyle": c.VisualStyle,
				"voice":       c.Voice.ID,
				"category":    c.Metadata.CategoryID,
				"intro":       c.Metadata.Intro,
				"outro":       c.Metadata.Outro,
				"thumbnail":   c.ThumbnailStyle,
				"watermark":   c.Branding.Watermark,
			} {
				if strings.TrimSpace(v) == "" {
					t.Errorf("%s is empty", name)
				}
			}
			if len(c.Metadata.Tags) == 0 {
				t.Error("no tags")
			}
			if c.Pacing.Main == 0 {
				t.Error("main pacing is zero")
			}
		})
	}
}

func TestExpandedChannelsComplete(t *testing.T) {
	keys := ExpandedChannelKeys()
	if len(keys) != 14 {
		t.Fatalf("ExpandedChannelKeys() = %d entries, want 14", len(keys))
	}
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			c, err := LookupExpandedChannel(key)
			if err != nil {
				t.Fatalf("LookupExpandedChannel(%q) error: %v", key, err)
			}
			if c.Name == "" || c.DescriptionTemplate == "" || c.Voice.ID == "" || c.Pacing == "" {
				t.Errorf("incomplete channel: %+v", c)
			}
			if c.DurationRange[0] <= 0 || c.DurationRange[1] < c.DurationRange[0] {
				t.Errorf("DurationRange = %v", c.DurationRange)
			}
			if len(c.Tags) == 0 {
				t.Error("no tags")
			}
		})
	}
}

func TestGospelChannelReferencesValidKeys(t *testing.T) {
	c, err := LookupExpandedChannel("gospel_music")
	if err != nil {
		t.Fatal(err)
	}
	for _, theme := range c.GospelThemes {
		if _, err := LookupGospelTheme(theme); err != nil {
			t.Errorf("gospel theme %q: %v", theme, err)
		}
	}
	for _, style := range c.GospelStyles {
		if _, err := LookupGospelStyle(style); err != nil {
			t.Errorf("gospel style %q: %v", style, err)
		}
	}
	custom, _ := LookupExpandedChannel("custom_channel")
	if !custom.Custom {
		t.Error("custom_channel should be flagged custom")
	}
}

func TestStylesComplete(t *testing.T) {
	if got := len(StyleKeys()); got != 6 {
		t.Fatalf("StyleKeys() = %d entries, want 6", got)
	}
	for key, s := range Styles() {
		if s.Name == "" || s.Description == "" || s.Examples == "" || len(s.BestFor) == 0 {
			t.Errorf("style %q incomplete: %+v", key, s)
		}
	}
}

func TestGospelTablesComplete(t *testing.T) {
	for _, key := range GospelThemeKeys() {
		theme, err := LookupGospelTheme(key)
		if err != nil {
			t.Fatal(err)
		}
		if theme.Script == "" || theme.Mood == "" || len(theme.Keywords) == 0 {
			t.Errorf("theme %q incomplete", key)
		}
		if got := ThemeVisuals(theme); len(got) != 3 {
			t.Errorf("ThemeVisuals(%q) = %d visuals, want 3", key, len(got))
		}
	}
	for _, key := range GospelStyleKeys() {
		style, _ := LookupGospelStyle(key)
		if style.Music.Tempo == "" || len(style.Music.Instruments) == 0 || style.ColorScheme == "" {
			t.Errorf("style %q incomplete", key)
		}
	}
	for key, ex := range GospelExamples() {
		if _, err := LookupGospelTheme(ex.Theme); err != nil {
			t.Errorf("example %q theme: %v", key, err)
		}
		if _, err := LookupGospelStyle(ex.Style); err != nil {
			t.Errorf("example %q style: %v", key, err)
		}
	}
	if TestimonyTemplate() == "" {
		t.Error("testimony template empty")
	}
}

func TestThemeVisualsPicks(t *testing.T) {
	faith, _ := LookupGospelTheme("faith")
	want := []string{
		"Golden light rays breaking through clouds",
		"Majestic mountains (strength, faith)",
		"Seeds growing (faith growth)",
	}
	if diff := cmp.Diff(want, ThemeVisuals(faith)); diff != "" {
		t.Errorf("ThemeVisuals(faith) mismatch (-want +got):\n%s", diff)
	}
}

func TestNichesComplete(t *testing.T) {
	keys := NicheKeys()
	want := []string{"business", "commentary", "finance", "spiritual", "tech", "tutorial", "wellness"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("NicheKeys() mismatch (-want +got):\n%s", diff)
	}
	for _, key := range keys {
		n, _ := LookupNiche(key)
		if n.Script == "" || n.Pacing == "" || n.Channel == "" || len(n.Visuals) == 0 || len(n.Tags) == 0 {
			t.Errorf("niche %q incomplete", key)
		}
		if _, err := LookupExpandedChannel(n.Channel); err != nil {
			t.Errorf("niche %q channel: %v", key, err)
		}
		for tk, topic := range n.Topics {
			if topic.Name == "" || len(topic.Keywords) == 0 {
				t.Errorf("niche %q topic %q incomplete", key, tk)
			}
		}
	}
}

func TestUnknownKeys(t *testing.T) {
	tech, _ := LookupNiche("tech")
	tutorial, _ := LookupNiche("tutorial")
	commentary, _ := LookupNiche("commentary")

	tests := []struct {
		name     string
		lookup   func() error
		wantKind string
		wantMsg  string
	}{
		{"channel", func() error { _, err := LookupChannel("nope"); return err }, "Channel template", ""},
		{"expanded", func() error { _, err := LookupExpandedChannel("nope"); return err }, "Channel template", ""},
		{"style", func() error { _, err := LookupStyle("nope"); return err }, "Style", ""},
		{"gospelTheme", func() error { _, err := LookupGospelTheme("nope"); return err }, "Theme",
			"Theme must be one of: [biblical_stories faith praise_celebration redemption spiritual_journey worship]"},
		{"gospelStyle", func() error { _, err := LookupGospelStyle("nope"); return err }, "Music style",
			"Music style must be one of: [contemporary_gospel soul_gospel spiritual_ambient traditional_gospel]"},
		{"techTopic", func() error { _, err := tech.LookupTopic("nope"); return err }, "Topic", ""},
		{"tutorialCategory", func() error { _, err := tutorial.LookupTopic("nope"); return err }, "Category", ""},
		{"commentaryStyle", func() error { _, err := commentary.LookupTopic("nope"); return err }, "Style", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lookup()
			var unknown *UnknownKeyError
			if !errors.As(err, &unknown) {
				t.Fatalf("error = %v, want *UnknownKeyError", err)
			}
			if unknown.Kind != tt.wantKind || unknown.Key != "nope" || len(unknown.Valid) == 0 {
				t.Errorf("UnknownKeyError = %+v", unknown)
			}
			if !strings.HasPrefix(err.Error(), tt.wantKind+" must be one of: [") {
				t.Errorf("Error() = %q", err.Error())
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestSuggestStyle(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"tutorial", "Here is how to bake bread", "animated_text_voiceover"},
		{"debate", "Two experts debate the future", "interactive_dialogue"},
		{"spiritual", "A journey of faith and peace", "visual_storytelling"},
		{"market", "The stock market fell today", "animated_text_voiceover"},
		{"travel", "Travel with us to the mountains", "human_avatar_hybrid"},
		{"fallback", "Volcanoes erupt with molten rock", "cinematic_landscape"},
		{"firstRuleWins", "A guide to faith", "animated_text_voiceover"},
		{"caseInsensitive", "EXPLAIN THIS", "animated_text_voiceover"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestStyle(tt.script); got != tt.want {
				t.Errorf("SuggestStyle(%q) = %q, want %q", tt.script, got, tt.want)
			}
		})
	}
}

func TestPrepareTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AI-generated Psalm 23 Explained", "Psalm 23 Explained"},
		{"Stories told by AI narrator", "Stories told by"},
		{"Plain title", "Plain title"},
	}
	for _, tt := range tests {
		if got := PrepareTitle(tt.in); got != tt.want {
			t.Errorf("PrepareTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrepareDescription(t *testing.T) {
	c, _ := LookupChannel("religious_documentary")
	got := c.PrepareDescription("Psalm 23 reflections.")
	want := "Exploring the wisdom and teachings of the Bible...\n\nPsalm 23 reflections.\n\nLike and subscribe for daily spiritual inspiration."
	if got != want {
		t.Errorf("PrepareDescription() = %q, want %q", got, want)
	}
}

func TestVoiceID(t *testing.T) {
	if got := VoiceID("Rachel"); got != "21m00Tcm4TlvDq8ikWAM" {
		t.Errorf("VoiceID(Rachel) = %q", got)
	}
	if got := VoiceID("customVoiceId"); got != "customVoiceId" {
		t.Errorf("VoiceID(raw id) = %q", got)
	}
}

func TestGuidelines(t *testing.T) {
	g := Guidelines()
	if len(g) != 4 {
		t.Fatalf("Guidelines() = %d categories, want 4", len(g))
	}
	for _, c := range g {
		if len(c.Items) == 0 {
			t.Errorf("category %q empty", c.Category)
		}
	}
}
