package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"omniflow/internal/catalog"
)

func TestBuildGospelScriptAllCombinations(t *testing.T) {
	for _, theme := range catalog.GospelThemeKeys() {
		for _, style := range catalog.GospelStyleKeys() {
			t.Run(theme+"/"+style, func(t *testing.T) {
				s, err := BuildGospelScript(GospelRequest{Theme: theme, Style: style, Duration: 6})
				if err != nil {
					t.Fatalf("BuildGospelScript() error: %v", err)
				}
				if len(s.Script.Text) <= 50 {
					t.Errorf("script too short: %q", s.Script.Text)
				}
				if s.Script.DurationSeconds != 360 {
					t.Errorf("DurationSeconds = %d, want 360", s.Script.DurationSeconds)
				}
				if len(s.Visuals) == 0 || len(s.Tags) == 0 || s.Music.Tempo == "" {
					t.Errorf("incomplete script: %+v", s)
				}
				if strings.Contains(s.Script.Text, "{{") {
					t.Errorf("unrendered template in %q", s.Script.Text)
				}
			})
		}
	}
}

func TestBuildGospelScriptDefaults(t *testing.T) {
	s, err := BuildGospelScript(GospelRequest{})
	if err != nil {
		t.Fatal(err)
	}
	worship, _ := catalog.LookupGospelTheme("worship")
	if s.Theme != worship.Name {
		t.Errorf("Theme = %q, want %q", s.Theme, worship.Name)
	}
	if s.Duration != 8 || s.Script.DurationSeconds != 480 {
		t.Errorf("Duration = %d/%d, want 8/480", s.Duration, s.Script.DurationSeconds)
	}
}

func TestBuildGospelScriptTestimony(t *testing.T) {
	without, _ := BuildGospelScript(GospelRequest{Theme: "redemption"})
	with, err := BuildGospelScript(GospelRequest{Theme: "redemption", Testimony: true})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(without.Script.Text, "[PERSONAL TESTIMONY]") {
		t.Error("testimony present without request")
	}
	if !strings.Contains(with.Script.Text, "[PERSONAL TESTIMONY]") {
		t.Error("testimony missing")
	}
	if !strings.HasPrefix(with.Script.Text, strings.TrimRight(without.Script.Text, "\n")) {
		t.Error("testimony should extend the base script")
	}
}

func TestBuildGospelScriptUnknown(t *testing.T) {
	tests := []struct {
		name string
		req  GospelRequest
		msg  string
	}{
		{"theme", GospelRequest{Theme: "jazz"},
			"Theme must be one of: [biblical_stories faith praise_celebration redemption spiritual_journey worship]"},
		{"style", GospelRequest{Style: "polka"},
			"Music style must be one of: [contemporary_gospel soul_gospel spiritual_ambient traditional_gospel]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildGospelScript(tt.req)
			var unknown *catalog.UnknownKeyError
			if !errors.As(err, &unknown) {
				t.Fatalf("error = %v, want *catalog.UnknownKeyError", err)
			}
			if err.Error() != tt.msg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.msg)
			}
		})
	}
}

func TestBuildGospelPlan(t *testing.T) {
	p, err := BuildGospelPlan(GospelRequest{Title: "Amazing Grace", Theme: "faith", Duration: 5})
	if err != nil {
		t.Fatal(err)
	}
	if p.Artist != "Gospel Artist" {
		t.Errorf("Artist = %q", p.Artist)
	}
	want := VideoMetadata{
		Duration:        5,
		ChannelTemplate: "gospel_music",
		VideoStyle:      "cinematic_storytelling",
		VoiceID:         "21m00Tcm4TlvDq8ikWAM",
	}
	if diff := cmp.Diff(want, p.Metadata); diff != "" {
		t.Errorf("Metadata mismatch (-want +got):\n%s", diff)
	}
	if len(p.YouTube.DescriptionElements) != 5 {
		t.Errorf("DescriptionElements = %v", p.YouTube.DescriptionElements)
	}
	if p.YouTube.Title != "Amazing Grace" || len(p.Visual.Transitions) == 0 || len(p.Quality.EngagementFactors) == 0 {
		t.Errorf("incomplete plan: %+v", p)
	}
}

func TestGospelExampleRequest(t *testing.T) {
	for key := range catalog.GospelExamples() {
		req, err := GospelExampleRequest(key)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := BuildGospelPlan(req); err != nil {
			t.Errorf("example %q: %v", key, err)
		}
	}
	if _, err := GospelExampleRequest("missing"); err == nil {
		t.Error("expected error for unknown example")
	}
}

func TestGenerateNicheEveryTopic(t *testing.T) {
	for _, niche := range catalog.NicheKeys() {
		n, _ := catalog.LookupNiche(niche)
		for _, topic := range n.TopicKeys() {
			t.Run(niche+"/"+topic, func(t *testing.T) {
				p, err := GenerateNiche(NicheRequest{Niche: niche, Topic: topic})
				if err != nil {
					t.Fatalf("GenerateNiche() error: %v", err)
				}
				if len(p.Script.Text) <= 50 {
					t.Errorf("script too short: %q", p.Script.Text)
				}
				if strings.Contains(p.Script.Text, "<no value>") {
					t.Errorf("missing template field in %q", p.Script.Text)
				}
				if len(p.VisualSuggestions) == 0 || len(p.Tags) == 0 {
					t.Errorf("incomplete plan: %+v", p)
				}
				if p.Duration != n.DefaultDuration {
					t.Errorf("Duration = %d, want %d", p.Duration, n.DefaultDuration)
				}
			})
		}
	}
}

func TestTechKeyPoints(t *testing.T) {
	p, err := Tech("ai_basics", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.KeyPoints) == 0 || p.KeyPoints[0] != "Definition of AI Basics & Introduction" {
		t.Errorf("KeyPoints = %v", p.KeyPoints)
	}
	if !strings.Contains(p.Script.Text, "ARTIFICIAL INTELLIGENCE BASICS") {
		t.Error("ai_basics should use its own script")
	}
	if p.Script.DurationSeconds != 600 {
		t.Errorf("DurationSeconds = %d", p.Script.DurationSeconds)
	}
}

func TestTutorialStepsClamped(t *testing.T) {
	tests := []struct {
		name  string
		steps int
		want  int
	}{
		{"default", 0, 5},
		{"negative", -3, 5},
		{"one", 1, 1},
		{"inRange", 7, 7},
		{"capped", 40, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Tutorial("diy_project", "build a birdhouse", tt.steps)
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.Count(p.Script.Text, "[STEP "); got != tt.want {
				t.Errorf("steps = %d, want %d", got, tt.want)
			}
			if !strings.Contains(p.Script.Text, "BUILD A BIRDHOUSE") {
				t.Error("title not rendered")
			}
		})
	}
}

func TestCommentarySubject(t *testing.T) {
	p, err := Commentary("news_breakdown", "the chip shortage")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.Script.Text, "THE CHIP SHORTAGE") {
		t.Errorf("subject not rendered: %q", p.Script.Text)
	}
}

func TestNicheTagsDeduplicated(t *testing.T) {
	got := nicheTags([]string{"AI", "Tech"}, []string{"AI", "ml"})
	if diff := cmp.Diff([]string{"AI", "Tech", "ml"}, got); diff != "" {
		t.Errorf("nicheTags() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateNicheUnknownTopic(t *testing.T) {
	tests := []struct {
		name string
		gen  func() error
		kind string
	}{
		{"tech", func() error { _, err := Tech("astrology", 5); return err }, "Topic"},
		{"tutorial", func() error { _, err := Tutorial("juggling", "x", 3); return err }, "Category"},
		{"commentary", func() error { _, err := Commentary("shouting", "x"); return err }, "Style"},
		{"niche", func() error { _, err := GenerateNiche(NicheRequest{Niche: "cooking"}); return err }, "Niche"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var unknown *catalog.UnknownKeyError
			if err := tt.gen(); !errors.As(err, &unknown) || unknown.Kind != tt.kind {
				t.Errorf("error = %v, want UnknownKeyError of kind %q", err, tt.kind)
			}
		})
	}
}

func TestGeneratorsRegistry(t *testing.T) {
	for channel, gen := range Generators {
		t.Run(channel, func(t *testing.T) {
			if _, err := catalog.LookupExpandedChannel(channel); err != nil {
				t.Fatalf("registry key is not a channel template: %v", err)
			}
			g, err := Lookup(channel)
			if err != nil || g == nil {
				t.Fatalf("Lookup(%q) = %v", channel, err)
			}
			n := nicheForChannel(t, channel)
			p, err := gen(n.TopicKeys()[0], 0)
			if err != nil {
				t.Fatal(err)
			}
			if p.Channel != channel {
				t.Errorf("Channel = %q, want %q", p.Channel, channel)
			}
		})
	}

	_, err := Lookup("gospel_music")
	var unknown *catalog.UnknownKeyError
	if !errors.As(err, &unknown) || unknown.Kind != "Channel template" {
		t.Errorf("Lookup(gospel_music) error = %v", err)
	}
}

func nicheForChannel(t *testing.T, channel string) catalog.Niche {
	t.Helper()
	for _, key := range catalog.NicheKeys() {
		n, _ := catalog.LookupNiche(key)
		if n.Channel == channel {
			return n
		}
	}
	t.Fatalf("no niche for channel %q", channel)
	return catalog.Niche{}
}

func TestDialogueScenes(t *testing.T) {
	lines := []DialogueLine{
		{Speaker: "Alice", Text: "Hi"},
		{Speaker: "Bob", Text: "one two three four five six seven eight nine ten eleven twelve"},
		{Speaker: "Alice", Text: "ok then"},
	}

	t.Run("noDirections", func(t *testing.T) {
		got := DialogueScenes(lines, nil)
		want := Scenes{
			Scenes: []Scene{
				{Turn: 1, Speaker: "Alice", Dialogue: "Hi", Visual: "Alice speaking", DurationSeconds: 3},
				{Turn: 2, Speaker: "Bob", Dialogue: lines[1].Text, Visual: "Bob speaking", DurationSeconds: 4},
				{Turn: 3, Speaker: "Alice", Dialogue: "ok then", Visual: "Alice speaking", DurationSeconds: 3},
			},
			TotalDuration: 10,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("DialogueScenes() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("cycledDirections", func(t *testing.T) {
		got := DialogueScenes(lines, []string{"wide shot", "close-up"})
		var visuals []string
		for _, s := range got.Scenes {
			visuals = append(visuals, s.Visual)
		}
		if diff := cmp.Diff([]string{"wide shot", "close-up", "wide shot"}, visuals); diff != "" {
			t.Errorf("visuals mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got := DialogueScenes(nil, nil)
		if len(got.Scenes) != 0 || got.TotalDuration != 0 {
			t.Errorf("DialogueScenes(nil) = %+v", got)
		}
	})
}

func TestParseDialogue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []DialogueLine
	}{
		{
			name:  "multipleLines",
			input: "Host: First line\nGuest: Second line\nHost: Third line",
			want: []DialogueLine{
				{Speaker: "Host", Text: "First line"},
				{Speaker: "Guest", Text: "Second line"},
				{Speaker: "Host", Text: "Third line"},
			},
		},
		{
			name:  "whitespaceAndEmptyLines",
			input: "  Host  :  Hello world  \n\n  Guest:Goodbye  ",
			want: []DialogueLine{
				{Speaker: "Host", Text: "Hello world"},
				{Speaker: "Guest", Text: "Goodbye"},
			},
		},
		{
			name:  "stageDirectionsDropped",
			input: "[Scene: a studio]\n(music fades)\nHost: (laughs)\nHost: Welcome *back*, ~friends~",
			want:  []DialogueLine{{Speaker: "Host", Text: "Welcome back, friends"}},
		},
		{
			name:  "speakerWithNumbers",
			input: "Speaker1: First\nSpeaker2: Second",
			want: []DialogueLine{
				{Speaker: "Speaker1", Text: "First"},
				{Speaker: "Speaker2", Text: "Second"},
			},
		},
		{
			name:  "pairedEmphasisOnly",
			input: "Host: **Big** news, _really_ big\nGuest: Set max_retries in config_file.yaml\nHost: See https://example.com/my_page_v2 and 2*3*4",
			want: []DialogueLine{
				{Speaker: "Host", Text: "Big news, really big"},
				{Speaker: "Guest", Text: "Set max_retries in config_file.yaml"},
				{Speaker: "Host", Text: "See https://example.com/my_page_v2 and 2*3*4"},
			},
		},
		{name: "noDialogue", input: "This is not a dialogue\nNeither is this"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseDialogue(tt.input)); diff != "" {
				t.Errorf("ParseDialogue() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSpeakers(t *testing.T) {
	lines := ParseDialogue("Alice: hi\nBob: hey\nAlice: bye\nCarol: late")
	if diff := cmp.Diff([]string{"Alice", "Bob", "Carol"}, Speakers(lines)); diff != "" {
		t.Errorf("Speakers() mismatch (-want +got):\n%s", diff)
	}
}
