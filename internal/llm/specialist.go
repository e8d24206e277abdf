package llm

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Specialist names accepted by Combine.
const (
	SpecialistAnalyst   = "youtube_analyst"
	SpecialistPoetry    = "poetry_generator"
	SpecialistStory     = "story_craft"
	SpecialistDeveloper = "script_developer"
	SpecialistHistory   = "history_insight"
)

var SpecialistNames = []string{
	SpecialistAnalyst,
	SpecialistPoetry,
	SpecialistStory,
	SpecialistDeveloper,
	SpecialistHistory,
}

const (
	maxHistoryClaims    = 5
	defaultArcMinutes   = 10
	defaultRefineTarget = 600
	defaultPoeticStyle  = "inspirational"
)

type TrendingTopic struct {
	Topic          string `json:"topic"`
	SearchVolume   string `json:"search_volume"`
	Competition    string `json:"competition"`
	BestDuration   string `json:"best_duration"`
	Angle          string `json:"angle"`
	PotentialViews string `json:"potential_views"`
}

type ViralScore struct {
	Score            int      `json:"score"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Hooks            []string `json:"hooks"`
	ThumbnailConcept string   `json:"thumbnail_concept"`
	PostingTime      string   `json:"posting_time"`
	ThumbnailPhrases []string `json:"thumbnail_phrases"`
}

type ArcSection struct {
	Name        string  `json:"name"`
	StartMinute float64 `json:"start_minute"`
	EndMinute   float64 `json:"end_minute"`
	Summary     string  `json:"summary"`
	Emotion     string  `json:"emotion"`
	Music       string  `json:"music"`
}

type StoryArc struct {
	Sections   []ArcSection `json:"sections"`
	Themes     []string     `json:"themes"`
	Pacing     string       `json:"pacing"`
	Characters []string     `json:"characters"`
}

type CharacterArc struct {
	StartingState       string   `json:"starting_state"`
	IncitingIncident    string   `json:"inciting_incident"`
	TurningPoints       []string `json:"turning_points"`
	InternalConflict    string   `json:"internal_conflict"`
	ExternalConflict    string   `json:"external_conflict"`
	Arc                 string   `json:"arc"`
	Resolution          string   `json:"resolution"`
	Transformation      string   `json:"transformation"`
	DialogueSuggestions []string `json:"dialogue_suggestions"`
	EmotionalCues       []string `json:"emotional_cues"`
}

type Refinement struct {
	Script           string   `json:"refined_script"`
	ProductionNotes  []string `json:"production_notes"`
	VoiceDirection   []string `json:"voice_direction"`
	EstimatedSeconds int      `json:"estimated_seconds"`
	SoundCues        []string `json:"sound_cues"`
}

type ClaimCheck struct {
	Claim              string   `json:"claim"`
	Rating             string   `json:"rating"`
	Sources            []string `json:"sources"`
	Context            string   `json:"context"`
	Misconceptions     []string `json:"misconceptions"`
	Nuance             string   `json:"nuance"`
	RecommendedWording string   `json:"recommended_wording"`
}

type TimelineEvent struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

type TimelineVisual struct {
	Date            string `json:"date"`
	Event           string `json:"event"`
	Visual          string `json:"visual"`
	Colors          string `json:"colors"`
	Animation       string `json:"animation"`
	DurationSeconds int    `json:"duration_seconds"`
	Voiceover       string `json:"voiceover"`
	Sound           string `json:"sound"`
	Overlay         string `json:"overlay"`
	Transition      string `json:"transition"`
}

// Specialists are focused writing and research roles layered on the
// same chat model as Enhancer.
type Specialists interface {
	TrendingTopics(ctx context.Context, niche string, n int) ([]TrendingTopic, error)
	ViralScore(ctx context.Context, title, script, niche string) (*ViralScore, error)
	PoeticNarration(ctx context.Context, topic, style string) (string, error)
	StoryArc(ctx context.Context, premise string, minutes int) (*StoryArc, error)
	CharacterDevelopment(ctx context.Context, description string) (*CharacterArc, error)
	RefineScript(ctx context.Context, script string, targetSeconds int) (*Refinement, error)
	ComedicTiming(ctx context.Context, script string) (string, error)
	VerifyHistory(ctx context.Context, topic string, claims []string) ([]ClaimCheck, error)
	HistoricalNarrative(ctx context.Context, period, topic string, minutes int) (string, error)
	TimelineGuide(ctx context.Context, events []TimelineEvent) ([]TimelineVisual, error)
}

// Combined holds one result per specialist that ran.
type Combined struct {
	Viral   *ViralScore  `json:"youtube_analyst,omitempty"`
	Poetic  string       `json:"poetry_generator,omitempty"`
	Arc     *StoryArc    `json:"story_craft,omitempty"`
	Refined *Refinement  `json:"script_developer,omitempty"`
	History []ClaimCheck `json:"history_insight,omitempty"`
}

// CombineRequest describes the content every selected specialist reviews.
type CombineRequest struct {
	Script string
	Title  string
	Niche  string
}

// Combine runs the named specialists over one script concurrently. An
// unknown name fails before any model call is made.
func Combine(ctx context.Context, s Specialists, req CombineRequest, names []string) (*Combined, error) {
	for _, name := range names {
		if !slices.Contains(SpecialistNames, name) {
			return nil, fmt.Errorf("unknown specialist %q, valid: %s", name, strings.Join(SpecialistNames, ", "))
		}
	}
	if strings.TrimSpace(req.Script) == "" {
		return nil, fmt.Errorf("combine: script is required")
	}
	topic := req.Title
	if topic == "" {
		topic = Truncate(firstSentence(req.Script), 100)
	}

	out := &Combined{}
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range slices.Compact(slices.Sorted(slices.Values(names))) {
		g.Go(func() error {
			var err error
			switch name {
			case SpecialistAnalyst:
				out.Viral, err = s.ViralScore(ctx, topic, req.Script, req.Niche)
			case SpecialistPoetry:
				out.Poetic, err = s.PoeticNarration(ctx, topic, defaultPoeticStyle)
			case SpecialistStory:
				out.Arc, err = s.StoryArc(ctx, Truncate(req.Script, 500), defaultArcMinutes)
			case SpecialistDeveloper:
				out.Refined, err = s.RefineScript(ctx, req.Script, defaultRefineTarget)
			case SpecialistHistory:
				out.History, err = s.VerifyHistory(ctx, topic, Claims(req.Script, maxHistoryClaims))
			}
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

var sentenceEnd = regexp.MustCompile(`[.!?]+(\s+|$)`)

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if loc := sentenceEnd.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[:loc[0]])
	}
	return text
}

// Claims picks up to n sentences from text, preferring those with a
// digit. Without any, the opening sentences are used.
func Claims(text string, n int) []string {
	var claims, plain []string
	for _, s := range sentenceEnd.Split(text, -1) {
		s = strings.TrimSpace(s)
		switch {
		case s == "":
		case strings.ContainsAny(s, "0123456789"):
			claims = append(claims, s)
		case len(plain) < n:
			plain = append(plain, s)
		}
		if len(claims) == n {
			break
		}
	}
	if len(claims) == 0 {
		return plain
	}
	return claims
}
