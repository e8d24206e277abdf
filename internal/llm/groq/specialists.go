package groq

import (
	"context"
	"fmt"
	"strings"

	"omniflow/internal/llm"
	"omniflow/pkg/prompts"
)

var _ llm.Specialists = (*Client)(nil)

const (
	analystTemperature  float32 = 0.7
	creativeTemperature float32 = 0.8
	factualTemperature  float32 = 0.6

	defaultTrendingCount = 5
	maxTrendingCount     = 20
	viralScriptContext   = 500
)

func (c *Client) TrendingTopics(ctx context.Context, niche string, n int) ([]llm.TrendingTopic, error) {
	if n <= 0 {
		n = defaultTrendingCount
	}
	n = min(n, maxTrendingCount)
	prompt, err := c.prompts.RenderTrending(prompts.TrendingParams{Niche: niche, Count: n})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	var wrapped struct {
		Topics []llm.TrendingTopic `json:"topics"`
	}
	if err := c.specialistJSON(ctx, prompt, analystTemperature, &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.Topics) > n {
		wrapped.Topics = wrapped.Topics[:n]
	}
	return wrapped.Topics, nil
}

// ViralScore clamps the model's score into 0-100.
func (c *Client) ViralScore(ctx context.Context, title, text, niche string) (*llm.ViralScore, error) {
	prompt, err := c.prompts.RenderViral(prompts.ViralParams{
		Title:  title,
		Niche:  niche,
		Script: llm.Truncate(text, viralScriptContext),
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	var out llm.ViralScore
	if err := c.specialistJSON(ctx, prompt, analystTemperature, &out); err != nil {
		return nil, err
	}
	out.Score = max(0, min(100, out.Score))
	return &out, nil
}

func (c *Client) PoeticNarration(ctx context.Context, topic, style string) (string, error) {
	if style == "" {
		style = "inspirational"
	}
	prompt, err := c.prompts.RenderPoetic(prompts.PoeticParams{Topic: topic, Style: style})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.specialistText(ctx, prompt, creativeTemperature)
}

func (c *Client) StoryArc(ctx context.Context, premise string, minutes int) (*llm.StoryArc, error) {
	if minutes <= 0 {
		minutes = 10
	}
	prompt, err := c.prompts.RenderStoryArc(prompts.StoryArcParams{Premise: premise, DurationMinutes: minutes})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	var out llm.StoryArc
	if err := c.specialistJSON(ctx, prompt, analystTemperature, &out); err != nil {
		return nil, err
	}
	if len(out.Sections) == 0 {
		return nil, fmt.Errorf("story arc: no sections in response")
	}
	return &out, nil
}

func (c *Client) CharacterDevelopment(ctx context.Context, description string) (*llm.CharacterArc, error) {
	prompt, err := c.prompts.RenderCharacter(prompts.CharacterParams{Description: description})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	var out llm.CharacterArc
	if err := c.specialistJSON(ctx, prompt, analystTemperature, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RefineScript(ctx context.Context, text string, targetSeconds int) (*llm.Refinement, error) {
	if targetSeconds <= 0 {
		targetSeconds = 600
	}
	prompt, err := c.prompts.RenderRefine(prompts.RefineParams{Script: text, TargetSeconds: targetSeconds})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	var out llm.Refinement
	if err := c.specialistJSON(ctx, prompt, factualTemperature, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Script) == "" {
		return nil, fmt.Errorf("refine: empty refined_script")
	}
	return &out, nil
}

func (c *Client) ComedicTiming(ctx context.Context, text string) (string, error) {
	prompt, err := c.prompts.RenderComedic(prompts.ScriptParams{Script: text})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.specialistText(ctx, prompt, creativeTemperature)
}

func (c *Client) VerifyHistory(ctx context.Context, topic string, claims []string) ([]llm.ClaimCheck, error) {
	if len(claims) == 0 {
		return nil, fmt.Errorf("verify history: no claims to check")
	}
	prompt, err := c.prompts.RenderVerifyHistory(prompts.VerifyHistoryParams{Topic: topic, Claims: claims})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	var wrapped struct {
		Claims []llm.ClaimCheck `json:"claims"`
	}
	if err := c.specialistJSON(ctx, prompt, factualTemperature, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Claims, nil
}

func (c *Client) HistoricalNarrative(ctx context.Context, period, topic string, minutes int) (string, error) {
	if minutes <= 0 {
		minutes = 10
	}
	prompt, err := c.prompts.RenderHistoricalNarrative(prompts.HistoricalNarrativeParams{
		Period:          period,
		Topic:           topic,
		DurationMinutes: minutes,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.specialistText(ctx, prompt, analystTemperature)
}

func (c *Client) TimelineGuide(ctx context.Context, events []llm.TimelineEvent) ([]llm.TimelineVisual, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("timeline: no events")
	}
	params := prompts.TimelineParams{Events: make([]prompts.TimelineEvent, len(events))}
	for i, e := range events {
		date := e.Date
		if date == "" {
			date = "Unknown"
		}
		params.Events[i] = prompts.TimelineEvent{Date: date, Event: e.Event}
	}
	prompt, err := c.prompts.RenderTimeline(params)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	var wrapped struct {
		Events []llm.TimelineVisual `json:"events"`
	}
	if err := c.specialistJSON(ctx, prompt, analystTemperature, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Events, nil
}

func (c *Client) specialistJSON(ctx context.Context, prompt string, temperature float32, v any) error {
	content, err := c.complete(ctx, c.prompts.System.JSON, prompt, true, temperature)
	if err != nil {
		return err
	}
	return llm.DecodeJSON(content, v)
}

func (c *Client) specialistText(ctx context.Context, prompt string, temperature float32) (string, error) {
	content, err := c.complete(ctx, c.prompts.System.Default, prompt, false, temperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}
