package script

import (
	"maps"
	"slices"
	"strings"

	"omniflow/internal/catalog"
)

// NicheRequest selects a niche table and one of its topics. Title,
// Subject and Count are only read by the templates that use them.
type NicheRequest struct {
	Niche    string `json:"niche"`
	Topic    string `json:"topic"`
	Title    string `json:"title,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Duration int    `json:"duration_minutes,omitempty"`
	Count    int    `json:"count,omitempty"`
}

type NichePlan struct {
	Niche             string             `json:"niche"`
	Channel           string             `json:"channel_template"`
	Topic             catalog.NicheTopic `json:"topic"`
	Script            Narrative          `json:"script"`
	VisualSuggestions []string           `json:"visual_suggestions"`
	Tags              []string           `json:"tags"`
	KeyPoints         []string           `json:"key_points,omitempty"`
	Structure         string             `json:"structure"`
	Pacing            string             `json:"pacing"`
	ColorPalette      string             `json:"color_palette"`
	Duration          int                `json:"duration_minutes"`
}

type nicheData struct {
	Name       string
	Title      string
	Subject    string
	Complexity string
	Duration   int
	Count      int
}

// GenerateNiche renders the script and production notes for a niche topic.
func GenerateNiche(req NicheRequest) (*NichePlan, error) {
	n, err := catalog.LookupNiche(req.Niche)
	if err != nil {
		return nil, err
	}
	topic, err := n.LookupTopic(req.Topic)
	if err != nil {
		return nil, err
	}

	d := nicheData{
		Name:       topic.Name,
		Title:      req.Title,
		Subject:    req.Subject,
		Complexity: topic.Complexity,
		Duration:   req.Duration,
		Count:      clampCount(req.Count, n.DefaultCount, n.MaxCount),
	}
	if d.Duration <= 0 {
		d.Duration = n.DefaultDuration
	}
	if d.Title == "" {
		d.Title = topic.Name
	}
	if d.Subject == "" {
		d.Subject = topic.Name
	}
	if d.Complexity == "" {
		d.Complexity = "beginner"
	}

	text, err := render(req.Niche+"/"+req.Topic, n.ScriptFor(topic), d)
	if err != nil {
		return nil, err
	}

	keyPoints := make([]string, 0, len(n.KeyPoints))
	for _, kp := range n.KeyPoints {
		s, err := render(req.Niche+"/keypoint", kp, d)
		if err != nil {
			return nil, err
		}
		keyPoints = append(keyPoints, strings.TrimSuffix(s, "\n"))
	}

	return &NichePlan{
		Niche:   req.Niche,
		Channel: n.Channel,
		Topic:   topic,
		Script: Narrative{
			Text:            text,
			DurationSeconds: d.Duration * 60,
			Pacing:          n.Pacing,
		},
		VisualSuggestions: n.Visuals,
		Tags:              nicheTags(n.Tags, topic.Keywords),
		KeyPoints:         keyPoints,
		Structure:         n.Structure,
		Pacing:            n.Pacing,
		ColorPalette:      n.ColorPalette,
		Duration:          d.Duration,
	}, nil
}

func clampCount(n, def, limit int) int {
	if n <= 0 {
		n = def
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return max(n, 1)
}

func nicheTags(base, keywords []string) []string {
	seen := make(map[string]bool, len(base)+len(keywords))
	out := make([]string, 0, len(base)+len(keywords))
	for _, t := range append(append([]string{}, base...), keywords...) {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func Tech(topic string, duration int) (*NichePlan, error) {
	return GenerateNiche(NicheRequest{Niche: "tech", Topic: topic, Duration: duration})
}

// Tutorial renders a step-by-step guide. Steps are clamped to 1..9.
func Tutorial(category, title string, steps int) (*NichePlan, error) {
	return GenerateNiche(NicheRequest{Niche: "tutorial", Topic: category, Title: title, Count: steps})
}

func Finance(topic string, duration int) (*NichePlan, error) {
	return GenerateNiche(NicheRequest{Niche: "finance", Topic: topic, Duration: duration})
}

func Commentary(style, subject string) (*NichePlan, error) {
	return GenerateNiche(NicheRequest{Niche: "commentary", Topic: style, Subject: subject})
}

func Wellness(topic string, duration int) (*NichePlan, error) {
	return GenerateNiche(NicheRequest{Niche: "wellness", Topic: topic, Duration: duration})
}

func Spiritual(topic string, duration int) (*NichePlan, error) {
	return GenerateNiche(NicheRequest{Niche: "spiritual", Topic: topic, Duration: duration})
}

func Business(topic string, duration int) (*NichePlan, error) {
	return GenerateNiche(NicheRequest{Niche: "business", Topic: topic, Duration: duration})
}

// Generator is the uniform shape shared by every niche generator.
type Generator func(topic string, duration int) (*NichePlan, error)

// Generators maps expanded channel templates to their script generator.
var Generators = map[string]Generator{
	"tech_explained_animated": Tech,
	"how_to_tutorial": func(category string, _ int) (*NichePlan, error) {
		return Tutorial(category, "", 0)
	},
	"financial_analysis": Finance,
	"trending_commentary": func(style string, _ int) (*NichePlan, error) {
		return Commentary(style, "")
	},
	"wellness_lifestyle":    Wellness,
	"spiritual_documentary": Spiritual,
	"business_insights":     Business,
}

// Lookup returns the generator registered for a channel template.
func Lookup(channel string) (Generator, error) {
	g, ok := Generators[channel]
	if !ok {
		return nil, &catalog.UnknownKeyError{
			Kind:  "Channel template",
			Key:   channel,
			Valid: slices.Sorted(maps.Keys(Generators)),
		}
	}
	return g, nil
}
