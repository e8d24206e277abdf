// Package llm defines the script intelligence features backed by a chat
// completion model.
package llm

import (
	"context"

	"omniflow/internal/script"
)

// WordsPerMinute is the natural narration pace used to size scripts.
const WordsPerMinute = 150

// FallbackTitle is returned when no usable title comes back.
const FallbackTitle = "Untitled Video"

type EnhanceOptions struct {
	DurationSeconds int
	Tone            string
	Style           string
	Hook            bool
	CTA             bool
	Transitions     bool
}

// TargetWords is the script length that fills the requested duration.
func (o EnhanceOptions) TargetWords() int {
	return o.DurationSeconds * WordsPerMinute / 60
}

type Enhancement struct {
	Script           string   `json:"enhanced_script"`
	KeyPoints        []string `json:"key_points"`
	SuggestedVisuals []string `json:"suggested_visuals"`
	DurationSeconds  int      `json:"estimated_duration_seconds"`
	EngagementScore  int      `json:"engagement_score"`
	SEOKeywords      []string `json:"seo_keywords"`
	Hook             string   `json:"hook"`
	CTA              string   `json:"cta"`
	Improvements     []string `json:"improvements_made"`
}

type Analysis struct {
	Overall         int      `json:"overall_score"`
	Hook            int      `json:"hook_strength"`
	Pacing          int      `json:"pacing"`
	InfoDensity     int      `json:"info_density"`
	Emotional       int      `json:"emotional_engagement"`
	CTA             int      `json:"cta_clarity"`
	SEO             int      `json:"seo_optimization"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

type Shorts struct {
	Script           string   `json:"shorts_script"`
	KeyMoments       []string `json:"key_moments"`
	MusicSuggestions []string `json:"music_suggestions"`
	TextOverlays     []string `json:"text_overlays"`
}

type Character struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
}

type Enhancer interface {
	Enhance(ctx context.Context, script string, opts EnhanceOptions) (*Enhancement, error)
	Titles(ctx context.Context, script string, n int) ([]string, error)
	Description(ctx context.Context, title, script string) (string, error)
	Analyze(ctx context.Context, script string) (*Analysis, error)
	Shorts(ctx context.Context, script string, maxSeconds int) (*Shorts, error)
	Dialogue(ctx context.Context, topic string, characters []Character, turns int) ([]script.DialogueLine, error)
}
