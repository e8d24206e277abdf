package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"omniflow/internal/comfyui"
	"omniflow/internal/distribution"
	"omniflow/internal/llm"
	"omniflow/internal/speech"
	"omniflow/internal/storage"
	"omniflow/internal/video"
	"omniflow/pkg/config"
)

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, opts comfyui.Options) ([][]byte, error)
}

type Composer interface {
	FromImages(ctx context.Context, req video.SlideshowRequest) error
	OverlayText(ctx context.Context, in, out string, o video.TextOverlay) error
	ExportForYouTube(ctx context.Context, in, out string) error
}

// Orchestrator runs productions. It holds no per-run state, so concurrent
// Produce calls are safe as long as the dependencies are.
type Orchestrator struct {
	cfg       *config.Config
	llm       llm.Enhancer
	images    ImageGenerator
	tts       speech.Provider
	composer  Composer
	publisher distribution.Publisher
	store     storage.Store
	now       func() time.Time
	newID     func() string
}

// Options wires an Orchestrator. LLM, Publisher and Store are optional.
type Options struct {
	Config    *config.Config
	LLM       llm.Enhancer
	Images    ImageGenerator
	TTS       speech.Provider
	Composer  Composer
	Publisher distribution.Publisher
	Store     storage.Store
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{
		cfg:       opts.Config,
		llm:       opts.LLM,
		images:    opts.Images,
		tts:       opts.TTS,
		composer:  opts.Composer,
		publisher: opts.Publisher,
		store:     opts.Store,
		now:       time.Now,
		newID:     shortID,
	}
}

func (o *Orchestrator) Config() *config.Config {
	return o.cfg
}

func (o *Orchestrator) LLM() llm.Enhancer {
	return o.llm
}

func (o *Orchestrator) TTS() speech.Provider {
	return o.tts
}

func (o *Orchestrator) Publisher() distribution.Publisher {
	return o.publisher
}

func shortID() string {
	return uuid.NewString()[:8]
}
