package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed prompts.yaml
var defaultPrompts []byte

type Prompts struct {
	System      SystemPrompts      `yaml:"system"`
	Script      ScriptPrompts      `yaml:"script"`
	Title       TitlePrompts       `yaml:"title"`
	Description DescriptionPrompts `yaml:"description"`
	Specialist  SpecialistPrompts  `yaml:"specialist"`
}

type SystemPrompts struct {
	Default string `yaml:"default"`
	JSON    string `yaml:"json"`
}

type ScriptPrompts struct {
	Enhance  string `yaml:"enhance"`
	Shorts   string `yaml:"shorts"`
	Dialogue string `yaml:"dialogue"`
	Analyze  string `yaml:"analyze"`
}

type TitlePrompts struct {
	Variations string `yaml:"variations"`
}

type DescriptionPrompts struct {
	Generate string `yaml:"generate"`
}

type SpecialistPrompts struct {
	Trending            string `yaml:"trending"`
	Viral               string `yaml:"viral"`
	Poetic              string `yaml:"poetic"`
	StoryArc            string `yaml:"story_arc"`
	Character           string `yaml:"character"`
	Refine              string `yaml:"refine"`
	Comedic             string `yaml:"comedic"`
	VerifyHistory       string `yaml:"verify_history"`
	HistoricalNarrative string `yaml:"historical_narrative"`
	Timeline            string `yaml:"timeline"`
}

type EnhanceParams struct {
	Script          string
	TargetWords     int
	DurationSeconds int
	Tone            string
	Style           string
	Hook            bool
	CTA             bool
	Transitions     bool
}

type ShortsParams struct {
	Script      string
	MaxSeconds  int
	TargetWords int
}

type Character struct {
	Name        string
	Personality string
}

type DialogueParams struct {
	Topic      string
	Characters []Character
	Turns      int
}

type ScriptParams struct {
	Script string
}

type TitleParams struct {
	Script string
	Count  int
}

type DescriptionParams struct {
	Title  string
	Script string
}

type TrendingParams struct {
	Niche string
	Count int
}

type ViralParams struct {
	Title  string
	Niche  string
	Script string
}

type PoeticParams struct {
	Topic string
	Style string
}

type StoryArcParams struct {
	Premise         string
	DurationMinutes int
}

type CharacterParams struct {
	Description string
}

type RefineParams struct {
	Script        string
	TargetSeconds int
}

type VerifyHistoryParams struct {
	Topic  string
	Claims []string
}

type HistoricalNarrativeParams struct {
	Period          string
	Topic           string
	DurationMinutes int
}

type TimelineEvent struct {
	Date  string
	Event string
}

type TimelineParams struct {
	Events []TimelineEvent
}

// Default returns the built-in prompt set.
func Default() *Prompts {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		panic(fmt.Sprintf("embedded prompts: %v", err))
	}
	return &p
}

// Load reads prompts.yaml from the working directory, falling back to
// the built-in set when it does not exist.
func Load() (*Prompts, error) {
	if _, err := os.Stat(defaultPromptsPath); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFrom(defaultPromptsPath)
}

// LoadFrom overlays the prompts in path on the built-in set. Keys
// missing from the file keep their defaults.
func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	return p, nil
}

func (p *Prompts) RenderEnhance(params EnhanceParams) (string, error) {
	return render(p.Script.Enhance, params)
}

func (p *Prompts) RenderShorts(params ShortsParams) (string, error) {
	return render(p.Script.Shorts, params)
}

func (p *Prompts) RenderDialogue(params DialogueParams) (string, error) {
	return render(p.Script.Dialogue, params)
}

func (p *Prompts) RenderAnalyze(params ScriptParams) (string, error) {
	return render(p.Script.Analyze, params)
}

func (p *Prompts) RenderTitles(params TitleParams) (string, error) {
	return render(p.Title.Variations, params)
}

func (p *Prompts) RenderDescription(params DescriptionParams) (string, error) {
	return render(p.Description.Generate, params)
}

func (p *Prompts) RenderTrending(params TrendingParams) (string, error) {
	return render(p.Specialist.Trending, params)
}

func (p *Prompts) RenderViral(params ViralParams) (string, error) {
	return render(p.Specialist.Viral, params)
}

func (p *Prompts) RenderPoetic(params PoeticParams) (string, error) {
	return render(p.Specialist.Poetic, params)
}

func (p *Prompts) RenderStoryArc(params StoryArcParams) (string, error) {
	return render(p.Specialist.StoryArc, params)
}

func (p *Prompts) RenderCharacter(params CharacterParams) (string, error) {
	return render(p.Specialist.Character, params)
}

func (p *Prompts) RenderRefine(params RefineParams) (string, error) {
	return render(p.Specialist.Refine, params)
}

func (p *Prompts) RenderComedic(params ScriptParams) (string, error) {
	return render(p.Specialist.Comedic, params)
}

func (p *Prompts) RenderVerifyHistory(params VerifyHistoryParams) (string, error) {
	return render(p.Specialist.VerifyHistory, params)
}

func (p *Prompts) RenderHistoricalNarrative(params HistoricalNarrativeParams) (string, error) {
	return render(p.Specialist.HistoricalNarrative, params)
}

func (p *Prompts) RenderTimeline(params TimelineParams) (string, error) {
	return render(p.Specialist.Timeline, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
