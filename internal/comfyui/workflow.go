// Package comfyui builds Stable Diffusion node graphs and runs them on a
// ComfyUI server.
package comfyui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultCheckpoint = "sd-v1-5-pruned-emaonly.safetensors"
	DefaultSteps      = 20
	DefaultCFG        = 7.0
	DefaultSampler    = "euler"
	DefaultScheduler  = "normal"

	gospelSeed = 12345
	techSeed   = 54321

	saveNode = "7"
)

// Node is one entry of a ComfyUI API-format graph. Links to other nodes
// are encoded as [nodeID, outputIndex].
type Node struct {
	ClassType string         `json:"class_type"`
	Inputs    map[string]any `json:"inputs"`
}

// Workflow is keyed by node ID.
type Workflow map[string]Node

type Options struct {
	Positive       string
	Negative       string
	Checkpoint     string
	Quality        string
	Seed           int64
	Steps          int
	CFG            float64
	FilenamePrefix string
}

type Resolution struct {
	Width  int
	Height int
}

var resolutions = map[string]Resolution{
	"1080p": {1920, 1080},
	"2K":    {2560, 1440},
	"4K":    {3840, 2160},
}

// ResolutionFor maps a quality level to pixel dimensions. Unknown levels
// fall back to 1080p.
func ResolutionFor(quality string) Resolution {
	if r, ok := resolutions[quality]; ok {
		return r
	}
	return resolutions["1080p"]
}

func link(node string, output int) []any {
	return []any{node, output}
}

// NewWorkflow builds the seven-node text-to-image graph: checkpoint,
// positive and negative prompts, empty latent, sampler, VAE decode, save.
func NewWorkflow(opts Options) Workflow {
	if opts.Checkpoint == "" {
		opts.Checkpoint = DefaultCheckpoint
	}
	if opts.Steps == 0 {
		opts.Steps = DefaultSteps
	}
	if opts.CFG == 0 {
		opts.CFG = DefaultCFG
	}
	if opts.FilenamePrefix == "" {
		opts.FilenamePrefix = "omniflow"
	}
	res := ResolutionFor(opts.Quality)

	return Workflow{
		"1": {
			ClassType: "CheckpointLoaderSimple",
			Inputs:    map[string]any{"ckpt_name": opts.Checkpoint},
		},
		"2": {
			ClassType: "CLIPTextEncode",
			Inputs:    map[string]any{"text": opts.Positive, "clip": link("1", 1)},
		},
		"3": {
			ClassType: "CLIPTextEncode",
			Inputs:    map[string]any{"text": opts.Negative, "clip": link("1", 1)},
		},
		"4": {
			ClassType: "EmptyLatentImage",
			Inputs:    map[string]any{"width": res.Width, "height": res.Height, "batch_size": 1},
		},
		"5": {
			ClassType: "KSampler",
			Inputs: map[string]any{
				"seed":         opts.Seed,
				"steps":        opts.Steps,
				"cfg":          opts.CFG,
				"sampler_name": DefaultSampler,
				"scheduler":    DefaultScheduler,
				"denoise":      1.0,
				"model":        link("1", 0),
				"positive":     link("2", 0),
				"negative":     link("3", 0),
				"latent_image": link("4", 0),
			},
		},
		"6": {
			ClassType: "VAEDecode",
			Inputs:    map[string]any{"samples": link("5", 0), "vae": link("1", 2)},
		},
		saveNode: {
			ClassType: "SaveImage",
			Inputs:    map[string]any{"filename_prefix": opts.FilenamePrefix, "images": link("6", 0)},
		},
	}
}

func GospelWorkflow(theme string, durationMinutes int, quality string) Workflow {
	return NewWorkflow(Options{
		Positive:       fmt.Sprintf("Gospel music video, theme: %s, duration: %dmin, spiritual, uplifting", theme, durationMinutes),
		Negative:       "low quality, blurry",
		Quality:        quality,
		Seed:           gospelSeed,
		FilenamePrefix: fmt.Sprintf("gospel_%s_%dmin", slug(theme), durationMinutes),
	})
}

func TechWorkflow(topic, complexity, quality string) Workflow {
	return NewWorkflow(Options{
		Positive:       fmt.Sprintf("Tech tutorial, topic: %s, complexity: %s, educational, clear visuals", topic, complexity),
		Negative:       "blurry, low quality, confusing",
		Quality:        quality,
		Seed:           techSeed,
		FilenamePrefix: fmt.Sprintf("tech_%s_%s", slug(topic), slug(complexity)),
	})
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// SaveWorkflow writes wf as indented JSON to dir/name.json and returns
// the path.
func SaveWorkflow(dir, name string, wf Workflow) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create workflows dir: %w", err)
	}
	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal workflow: %w", err)
	}
	path := filepath.Join(dir, strings.TrimSuffix(name, ".json")+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write workflow: %w", err)
	}
	return path, nil
}
