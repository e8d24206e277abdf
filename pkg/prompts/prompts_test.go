package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPromptsComplete(t *testing.T) {
	p := Default()

	fields := map[string]string{
		"system.default":       p.System.Default,
		"system.json":          p.System.JSON,
		"script.enhance":       p.Script.Enhance,
		"script.shorts":        p.Script.Shorts,
		"script.dialogue":      p.Script.Dialogue,
		"script.analyze":       p.Script.Analyze,
		"title.variations":     p.Title.Variations,
		"description.generate": p.Description.Generate,

		"specialist.trending":             p.Specialist.Trending,
		"specialist.viral":                p.Specialist.Viral,
		"specialist.poetic":               p.Specialist.Poetic,
		"specialist.story_arc":            p.Specialist.StoryArc,
		"specialist.character":            p.Specialist.Character,
		"specialist.refine":               p.Specialist.Refine,
		"specialist.comedic":              p.Specialist.Comedic,
		"specialist.verify_history":       p.Specialist.VerifyHistory,
		"specialist.historical_narrative": p.Specialist.HistoricalNarrative,
		"specialist.timeline":             p.Specialist.Timeline,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }()
	_ = os.Chdir(tmpDir)

	p, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Script.Enhance != Default().Script.Enhance {
		t.Error("Load() without prompts.yaml should return defaults")
	}
}

func TestLoadFromOverlaysDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	promptsPath := filepath.Join(tmpDir, "custom.yaml")

	content := `
system:
  default: "Custom default"
title:
  variations: "Give {{.Count}} titles"
`
	if err := os.WriteFile(promptsPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFrom(promptsPath)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if p.System.Default != "Custom default" {
		t.Errorf("System.Default = %q, want %q", p.System.Default, "Custom default")
	}
	if p.Script.Shorts == "" {
		t.Error("Script.Shorts should keep its default")
	}
	got, _ := p.RenderTitles(TitleParams{Count: 3})
	if got != "Give 3 titles" {
		t.Errorf("RenderTitles() = %q", got)
	}
}

func TestLoadFromErrors(t *testing.T) {
	tmpDir := t.TempDir()
	invalid := filepath.Join(tmpDir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("not: valid: yaml: content:"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missingFile", "/nonexistent/path.yaml"},
		{"invalidYAML", invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFrom(tt.path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRenderEnhance(t *testing.T) {
	p := Default()

	got, err := p.RenderEnhance(EnhanceParams{
		Script:          "Stars are far away.",
		TargetWords:     150,
		DurationSeconds: 60,
		Tone:            "educational",
		Style:           "documentary",
		Hook:            true,
	})
	if err != nil {
		t.Fatalf("RenderEnhance() error = %v", err)
	}

	for _, want := range []string{"Stars are far away.", "~150 words", "60 seconds", "compelling hook"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(got, "call-to-action (subscribe") {
		t.Error("CTA instruction rendered although CTA is false")
	}
}

func TestRenderDialogue(t *testing.T) {
	p := Default()

	got, err := p.RenderDialogue(DialogueParams{
		Topic: "AI ethics",
		Characters: []Character{
			{Name: "Alice", Personality: "curious, analytical"},
			{Name: "Bob", Personality: "skeptical, practical"},
		},
		Turns: 4,
	})
	if err != nil {
		t.Fatalf("RenderDialogue() error = %v", err)
	}

	for _, want := range []string{"Topic: AI ethics", "- Alice: curious, analytical", "- Bob: skeptical", "Create 4"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRenderDescription(t *testing.T) {
	p := &Prompts{Description: DescriptionPrompts{Generate: "{{.Title}}: {{.Script}}"}}

	got, err := p.RenderDescription(DescriptionParams{Title: "Psalm 23", Script: "The Lord is my shepherd"})
	if err != nil {
		t.Fatalf("RenderDescription() error = %v", err)
	}
	if got != "Psalm 23: The Lord is my shepherd" {
		t.Errorf("RenderDescription() = %q", got)
	}
}

func TestRenderInvalidTemplate(t *testing.T) {
	p := &Prompts{Script: ScriptPrompts{Analyze: "{{.Invalid"}}

	if _, err := p.RenderAnalyze(ScriptParams{Script: "x"}); err == nil {
		t.Error("expected error for invalid template")
	}
}

func TestRenderSpecialistLists(t *testing.T) {
	p := Default()

	got, err := p.RenderVerifyHistory(VerifyHistoryParams{Topic: "Rome", Claims: []string{"Founded 753 BC", "Fell in 476"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"about: Rome", "- Founded 753 BC\n", "- Fell in 476"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderVerifyHistory() missing %q:\n%s", want, got)
		}
	}

	got, err = p.RenderTimeline(TimelineParams{Events: []TimelineEvent{{Date: "1969-07-20", Event: "Moon landing"}}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "- 1969-07-20: Moon landing") {
		t.Errorf("RenderTimeline() missing event:\n%s", got)
	}
}
