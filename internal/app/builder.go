package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"omniflow/internal/comfyui"
	"omniflow/internal/distribution"
	"omniflow/internal/distribution/webhook"
	"omniflow/internal/distribution/youtube"
	"omniflow/internal/llm"
	"omniflow/internal/llm/groq"
	"omniflow/internal/speech"
	"omniflow/internal/speech/elevenlabs"
	"omniflow/internal/storage"
	"omniflow/internal/video"
	"omniflow/pkg/config"
	"omniflow/pkg/prompts"
)

// Build wires the production clients from cfg. Missing optional
// credentials leave the matching feature off rather than failing.
func Build(ctx context.Context, cfg *config.Config) (*Orchestrator, error) {
	enhancer, err := NewLLM(cfg)
	if err != nil {
		return nil, err
	}

	var store storage.Store
	store, err = storage.Open(ctx, cfg.Storage)
	if errors.Is(err, storage.ErrDisabled) {
		store = nil
	} else if err != nil {
		return nil, err
	}

	return New(Options{
		Config:    cfg,
		LLM:       enhancer,
		Images:    comfyui.NewClient(cfg.ComfyUI),
		TTS:       NewSpeech(cfg),
		Composer:  video.NewComposer(cfg.Video.FFmpegPath),
		Publisher: NewPublisher(cfg),
		Store:     store,
	}), nil
}

// NewLLM returns the groq-backed enhancer, or nil without GROQ_API_KEY.
func NewLLM(cfg *config.Config) (llm.Enhancer, error) {
	if cfg.GroqAPIKey == "" {
		slog.Debug("GROQ_API_KEY not set, script intelligence disabled")
		return nil, nil
	}
	c, err := newGroq(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewSpecialists returns nil, nil without a Groq key, like NewLLM.
func NewSpecialists(cfg *config.Config) (llm.Specialists, error) {
	if cfg.GroqAPIKey == "" {
		return nil, nil
	}
	c, err := newGroq(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newGroq(cfg *config.Config) (*groq.Client, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}
	client, err := groq.NewClient(cfg.GroqAPIKey, cfg.LLM.Model, cfg.LLM.BaseURL, p)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}
	return client, nil
}

// NewSpeech returns ElevenLabs when enabled and keyed, otherwise the
// silent stub.
func NewSpeech(cfg *config.Config) speech.Provider {
	if cfg.ElevenLabsEnabled() {
		return elevenlabs.NewClient(cfg.ElevenLabsAPIKeys, cfg.ElevenLabs)
	}
	slog.Warn("ElevenLabs disabled or ELEVENLABS_API_KEY missing, using silent narration")
	return speech.NewStubProvider(llm.WordsPerMinute)
}

// NewPublisher picks the publish method. It returns nil when the method
// has no credentials; publishing then reports ErrNotConfigured.
func NewPublisher(cfg *config.Config) distribution.Publisher {
	switch cfg.Publish.Method {
	case "youtube":
		if cfg.YouTubeClientID == "" || cfg.YouTubeClientSecret == "" {
			return nil
		}
		auth := youtube.NewAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTube.TokenPath)
		return youtube.NewPublisher(auth, cfg.Publish)
	default:
		if cfg.YouTubeWebhookURL == "" {
			return nil
		}
		return webhook.New(cfg.YouTubeWebhookURL, cfg.Publish, cfg.YouTube.DefaultTags)
	}
}

func (o *Orchestrator) Close() error {
	if o.store == nil {
		return nil
	}
	return o.store.Close()
}
