package comfyui

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
)

const (
	AvatarTalkingHead = "talking_head"
	AvatarGesture     = "gesture"
	AvatarCharacter   = "character"

	DefaultMotionModel   = "mm_sd_v15_v2.ckpt"
	DefaultIPAdapter     = "PLUS FACE (portraits)"
	DefaultAvatarFPS     = 8
	DefaultAvatarSeconds = 5
	DefaultGestureSecs   = 3
	DefaultConsistency   = 0.8

	avatarSeed       = 24680
	characterPoses   = 4
	avatarNegative   = "deformed face, extra limbs, flicker, blurry, low quality"
	loadImageNode    = "8"
	ipLoaderNode     = "9"
	ipAdapterNode    = "10"
	motionNode       = "11"
	videoCombineNode = "12"
)

// AvatarKinds lists the avatar graphs AvatarWorkflow can build.
var AvatarKinds = []string{AvatarTalkingHead, AvatarGesture, AvatarCharacter}

// ErrProfileNotFound is returned when no consistency profile has the id.
var ErrProfileNotFound = errors.New("consistency profile not found")

var avatarResolution = Resolution{512, 768}

type AvatarOptions struct {
	Kind string
	// Text is the dialogue for a talking head, the movement for a gesture
	// and the description for a character sheet.
	Text           string
	Emotion        string
	ReferenceImage string
	// Strength is the IP-Adapter weight in [0, 1]. Zero takes the default.
	Strength       float64
	Seconds        int
	FPS            int
	Seed           int64
	Checkpoint     string
	FilenamePrefix string
}

// AvatarWorkflow builds an AnimateDiff graph for talking heads and
// gestures, or a batch of stills for a character sheet. A reference image
// adds an IP-Adapter stage that keeps the face consistent across frames.
func AvatarWorkflow(opts AvatarOptions) (Workflow, error) {
	if !slices.Contains(AvatarKinds, opts.Kind) {
		return nil, fmt.Errorf("avatar kind must be one of: %v, got %q", AvatarKinds, opts.Kind)
	}
	if opts.Kind == AvatarCharacter && opts.ReferenceImage == "" {
		return nil, errors.New("character avatar needs a reference image")
	}
	if opts.Emotion == "" {
		opts.Emotion = "neutral"
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultAvatarFPS
	}
	if opts.Seconds <= 0 {
		opts.Seconds = DefaultAvatarSeconds
		if opts.Kind == AvatarGesture {
			opts.Seconds = DefaultGestureSecs
		}
	}
	if opts.Seed == 0 {
		opts.Seed = avatarSeed
	}
	if opts.FilenamePrefix == "" {
		opts.FilenamePrefix = "avatar_" + opts.Kind
	}
	strength, err := consistencyStrength(opts.Strength)
	if err != nil {
		return nil, err
	}

	var positive string
	switch opts.Kind {
	case AvatarTalkingHead:
		positive = fmt.Sprintf("portrait of a person talking to camera, %s expression, natural lip and head movement, saying: %s", opts.Emotion, opts.Text)
	case AvatarGesture:
		positive = fmt.Sprintf("character performing %s, smooth natural motion, %s expression", opts.Text, opts.Emotion)
	case AvatarCharacter:
		positive = fmt.Sprintf("character reference sheet, %s, same face, varied poses, full body", opts.Text)
	}

	wf := NewWorkflow(Options{
		Positive:       positive,
		Negative:       avatarNegative,
		Checkpoint:     opts.Checkpoint,
		Seed:           opts.Seed,
		FilenamePrefix: opts.FilenamePrefix,
	})
	latent := wf["4"].Inputs
	latent["width"], latent["height"] = avatarResolution.Width, avatarResolution.Height

	model := link("1", 0)
	if opts.ReferenceImage != "" {
		wf[loadImageNode] = Node{
			ClassType: "LoadImage",
			Inputs:    map[string]any{"image": opts.ReferenceImage},
		}
		wf[ipLoaderNode] = Node{
			ClassType: "IPAdapterUnifiedLoader",
			Inputs:    map[string]any{"model": model, "preset": DefaultIPAdapter},
		}
		wf[ipAdapterNode] = Node{
			ClassType: "IPAdapter",
			Inputs: map[string]any{
				"model":       link(ipLoaderNode, 0),
				"ipadapter":   link(ipLoaderNode, 1),
				"image":       link(loadImageNode, 0),
				"weight":      strength,
				"start_at":    0.0,
				"end_at":      1.0,
				"weight_type": "standard",
			},
		}
		model = link(ipAdapterNode, 0)
	}

	if opts.Kind == AvatarCharacter {
		latent["batch_size"] = characterPoses
		wf["5"].Inputs["model"] = model
		return wf, nil
	}

	latent["batch_size"] = opts.Seconds * opts.FPS
	wf[motionNode] = Node{
		ClassType: "ADE_AnimateDiffLoaderGen1",
		Inputs:    map[string]any{"model": model, "model_name": DefaultMotionModel, "beta_schedule": "autoselect"},
	}
	wf["5"].Inputs["model"] = link(motionNode, 0)
	wf[videoCombineNode] = Node{
		ClassType: "VHS_VideoCombine",
		Inputs: map[string]any{
			"images":          link("6", 0),
			"frame_rate":      opts.FPS,
			"loop_count":      0,
			"filename_prefix": opts.FilenamePrefix,
			"format":          "video/h264-mp4",
			"pingpong":        false,
			"save_output":     true,
		},
	}
	return wf, nil
}

func consistencyStrength(s float64) (float64, error) {
	switch {
	case s == 0:
		return DefaultConsistency, nil
	case s < 0 || s > 1:
		return 0, fmt.Errorf("consistency strength must be within [0, 1], got %g", s)
	}
	return s, nil
}

// Profile pins a real person's look so later scenes reuse the same
// reference images.
type Profile struct {
	ID              string            `json:"character_id"`
	ReferenceImages []string          `json:"reference_images"`
	Notes           map[string]string `json:"style_notes,omitempty"`
}

// Profiles is a consistency profile registry persisted as JSON.
type Profiles struct {
	mu       sync.Mutex
	path     string
	profiles map[string]Profile
}

// LoadProfiles reads the registry at path. A missing file is an empty
// registry.
func LoadProfiles(path string) (*Profiles, error) {
	p := &Profiles{path: path, profiles: make(map[string]Profile)}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	if err := json.Unmarshal(data, &p.profiles); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}
	return p, nil
}

// Create stores a profile, replacing any with the same id, and saves the
// registry.
func (p *Profiles) Create(id string, images []string, notes map[string]string) (Profile, error) {
	if id == "" {
		return Profile{}, errors.New("profile id is required")
	}
	if len(images) == 0 {
		return Profile{}, fmt.Errorf("profile %s: at least one reference image is required", id)
	}
	prof := Profile{ID: id, ReferenceImages: images, Notes: notes}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[id] = prof
	return prof, p.save()
}

func (p *Profiles) Get(id string) (Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prof, ok := p.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	return prof, nil
}

func (p *Profiles) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.profiles))
	for id := range p.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Apply builds a character workflow for a new scene that keeps the
// profile's face, weighted by strength.
func (p *Profiles) Apply(id, scene string, strength float64) (Workflow, error) {
	prof, err := p.Get(id)
	if err != nil {
		return nil, err
	}
	return AvatarWorkflow(AvatarOptions{
		Kind:           AvatarCharacter,
		Text:           scene,
		ReferenceImage: prof.ReferenceImages[0],
		Strength:       strength,
		FilenamePrefix: "character_" + slug(id),
	})
}

func (p *Profiles) save() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("create profiles dir: %w", err)
	}
	data, err := json.MarshalIndent(p.profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0644); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}
