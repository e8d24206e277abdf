package groq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/conneroisu/groq-go"

	"omniflow/internal/llm"
	"omniflow/internal/script"
	"omniflow/pkg/prompts"
)

var _ llm.Enhancer = (*Client)(nil)

const (
	maxTitleLength    = 100
	maxShortsSeconds  = 60
	defaultTitleCount = 5
	titleContext      = 500
	descriptionInput  = 1000
)

type Client struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

// NewClient builds a Groq backed Enhancer. baseURL is optional.
func NewClient(apiKey, model, baseURL string, p *prompts.Prompts) (*Client, error) {
	var (
		client *groq.Client
		err    error
	)
	if baseURL != "" {
		client, err = groq.NewClient(apiKey, groq.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/"))
	} else {
		client, err = groq.NewClient(apiKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}
	if p == nil {
		p = prompts.Default()
	}

	return &Client{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (c *Client) Enhance(ctx context.Context, text string, opts llm.EnhanceOptions) (*llm.Enhancement, error) {
	if opts.Tone == "" {
		opts.Tone = "professional"
	}
	if opts.Style == "" {
		opts.Style = "documentary"
	}
	prompt, err := c.prompts.RenderEnhance(prompts.EnhanceParams{
		Script:          text,
		TargetWords:     opts.TargetWords(),
		DurationSeconds: opts.DurationSeconds,
		Tone:            opts.Tone,
		Style:           opts.Style,
		Hook:            opts.Hook,
		CTA:             opts.CTA,
		Transitions:     opts.Transitions,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out llm.Enhancement
	if err := llm.DecodeJSON(content, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Script) == "" {
		return nil, fmt.Errorf("enhance: empty enhanced_script")
	}
	return &out, nil
}

// Titles never fails on an unparseable answer; it falls back to a
// single placeholder title instead.
func (c *Client) Titles(ctx context.Context, text string, n int) ([]string, error) {
	if n <= 0 {
		n = defaultTitleCount
	}
	prompt, err := c.prompts.RenderTitles(prompts.TitleParams{
		Script: llm.Truncate(text, titleContext),
		Count:  n,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Titles []string `json:"titles"`
	}
	if err := llm.DecodeJSON(content, &wrapped); err != nil {
		slog.Warn("Unparseable titles response", "error", err)
		return []string{llm.FallbackTitle}, nil
	}

	titles := make([]string, 0, len(wrapped.Titles))
	for _, t := range wrapped.Titles {
		if t = cleanTitle(t); t != "" {
			titles = append(titles, t)
		}
	}
	if len(titles) == 0 {
		return []string{llm.FallbackTitle}, nil
	}
	if len(titles) > n {
		titles = titles[:n]
	}
	return titles, nil
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, "\"'")

	if idx := strings.Index(title, "\n"); idx > 0 {
		title = title[:idx]
	}

	return llm.Truncate(strings.TrimSpace(title), maxTitleLength)
}

func (c *Client) Description(ctx context.Context, title, text string) (string, error) {
	prompt, err := c.prompts.RenderDescription(prompts.DescriptionParams{
		Title:  title,
		Script: llm.Truncate(text, descriptionInput),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generate(ctx, c.prompts.System.Default, prompt, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *Client) Analyze(ctx context.Context, text string) (*llm.Analysis, error) {
	prompt, err := c.prompts.RenderAnalyze(prompts.ScriptParams{Script: text})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out llm.Analysis
	if err := llm.DecodeJSON(content, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Shorts(ctx context.Context, text string, maxSeconds int) (*llm.Shorts, error) {
	if maxSeconds <= 0 || maxSeconds > maxShortsSeconds {
		maxSeconds = maxShortsSeconds
	}
	prompt, err := c.prompts.RenderShorts(prompts.ShortsParams{
		Script:      text,
		MaxSeconds:  maxSeconds,
		TargetWords: maxSeconds * llm.WordsPerMinute / 60,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out llm.Shorts
	if err := llm.DecodeJSON(content, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Dialogue(ctx context.Context, topic string, characters []llm.Character, turns int) ([]script.DialogueLine, error) {
	if len(characters) == 0 {
		return nil, fmt.Errorf("dialogue needs at least one character")
	}
	chars := make([]prompts.Character, len(characters))
	for i, ch := range characters {
		chars[i] = prompts.Character{Name: ch.Name, Personality: ch.Personality}
	}
	prompt, err := c.prompts.RenderDialogue(prompts.DialogueParams{
		Topic:      topic,
		Characters: chars,
		Turns:      turns,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Dialogue []script.DialogueLine `json:"dialogue"`
	}
	if err := llm.DecodeJSON(content, &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.Dialogue) == 0 {
		return nil, fmt.Errorf("no dialogue in response")
	}
	return wrapped.Dialogue, nil
}

func (c *Client) generateJSON(ctx context.Context, userPrompt string) (string, error) {
	return c.generate(ctx, c.prompts.System.JSON, userPrompt, true)
}

func (c *Client) generate(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, jsonMode, 0)
}

// complete sends one chat turn. A zero temperature leaves the model default.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool, temperature float32) (string, error) {
	req := groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: userPrompt},
		},
		Temperature: temperature,
	}

	if jsonMode {
		req.ResponseFormat = &groq.ChatResponseFormat{Type: "json_object"}
	}

	resp, err := c.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	slog.Debug("LLM response", "model", c.model, "chars", len(content))
	return content, nil
}
