package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"omniflow/internal/catalog"
	"omniflow/internal/comfyui"
	"omniflow/internal/distribution"
	"omniflow/internal/distribution/optimize"
	"omniflow/internal/llm"
	"omniflow/internal/speech"
	"omniflow/internal/storage"
	"omniflow/internal/video"
)

const (
	StageEnhance = "enhance"
	StageVisuals = "visuals"
	StageVoice   = "voice"
	StageCompose = "compose"
	StagePublish = "publish"
	StageArchive = "archive"

	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"

	visualPromptLen   = 500
	titleOverlaySecs  = 3
	titleOverlaySize  = 48
	titleOverlayColor = "white"
)

var (
	ErrNoFrames = errors.New("no frames generated")
	// ErrInvalidRequest wraps every Request validation failure.
	ErrInvalidRequest = errors.New("invalid production request")
)

// StageError marks a failure that aborted a production.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Request struct {
	Script          string   `json:"script"`
	ProjectName     string   `json:"project_name"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	Channel         string   `json:"channel"`
	Style           string   `json:"style"`
	Voice           string   `json:"voice"`
	Niche           string   `json:"niche"`
	DurationSeconds int      `json:"duration_seconds"`
	Enhance         bool     `json:"enhance"`
	Publish         bool     `json:"publish"`
	PublishAt       string   `json:"publish_at"`
}

type StageResult struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type Production struct {
	Status      string               `json:"status"`
	ProjectName string               `json:"project_name"`
	ID          string               `json:"id"`
	Dir         string               `json:"dir"`
	Style       string               `json:"style"`
	Frames      []string             `json:"frames"`
	Audio       string               `json:"audio,omitempty"`
	Video       string               `json:"video,omitempty"`
	Publish     *distribution.Result `json:"publish,omitempty"`
	Artifacts   []string             `json:"artifacts,omitempty"`
	Log         string               `json:"log"`
	Error       string               `json:"error,omitempty"`
}

type Metadata struct {
	ProjectName string                 `json:"project_name"`
	CreatedAt   time.Time              `json:"created_at"`
	Stages      map[string]StageResult `json:"stages"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Result      *Production            `json:"result,omitempty"`
}

type production struct {
	o       *Orchestrator
	req     Request
	session *session
	meta    *Metadata
	result  *Production
}

func (r Request) validate() error {
	if r.Script == "" {
		return fmt.Errorf("%w: script is required", ErrInvalidRequest)
	}
	if r.Channel != "" {
		if _, err := catalog.LookupChannel(r.Channel); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	if r.Style != "" {
		if _, err := catalog.LookupStyle(r.Style); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	return nil
}

// Produce runs enhance, visuals, voice, compose and publish in order.
// Enhance, visuals and publish degrade on failure; voice and compose
// abort with a *StageError. metadata.json is written either way.
func (o *Orchestrator) Produce(ctx context.Context, req Request) (*Production, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.ProjectName == "" {
		req.ProjectName = req.Title
	}
	if req.DurationSeconds <= 0 {
		req.DurationSeconds = o.cfg.Production.Duration
	}
	if req.Niche == "" {
		req.Niche = o.cfg.Publish.Niche
	}
	if req.Style == "" {
		req.Style = catalog.SuggestStyle(req.Script)
	}

	s, err := newSession(o.cfg.Production.OutputDir, req.ProjectName, o.newID(), o.now)
	if err != nil {
		return nil, err
	}

	p := &production{
		o:       o,
		req:     req,
		session: s,
		meta: &Metadata{
			ProjectName: req.ProjectName,
			CreatedAt:   o.now().UTC(),
			Stages:      map[string]StageResult{},
		},
		result: &Production{
			ProjectName: req.ProjectName,
			ID:          s.id,
			Dir:         s.dir,
			Style:       req.Style,
			Log:         s.log.path,
		},
	}

	err = p.run(ctx)
	if saveErr := p.finish(err); saveErr != nil && err == nil {
		err = saveErr
	}
	if err != nil {
		return p.result, err
	}

	p.archive(ctx)
	return p.result, nil
}

func (p *production) run(ctx context.Context) error {
	p.logf("orchestrator", "INFO", "Starting production for %q", p.req.Title)

	text := p.req.Script
	if p.req.Enhance {
		text = p.enhance(ctx, text)
	}

	p.result.Frames = p.visuals(ctx, text)

	audio, err := p.voice(ctx, text)
	if err != nil {
		return err
	}
	p.result.Audio = audio

	videoPath, err := p.compose(ctx, p.result.Frames, audio)
	if err != nil {
		return err
	}
	p.result.Video = videoPath

	if p.req.Publish {
		p.result.Publish = p.publish(ctx, videoPath)
	}
	return nil
}

func (p *production) enhance(ctx context.Context, text string) string {
	if p.o.llm == nil {
		p.stage(StageEnhance, StageResult{Status: StatusSkipped, Message: "no LLM configured"})
		p.logf(StageEnhance, "WARN", "Enhancement skipped: no LLM configured")
		return text
	}

	p.logf(StageEnhance, "INFO", "Enhancing script...")
	res, err := p.o.llm.Enhance(ctx, text, llm.EnhanceOptions{
		DurationSeconds: p.req.DurationSeconds,
		Tone:            "professional",
		Style:           "documentary",
		Hook:            true,
		CTA:             true,
	})
	if err != nil {
		p.stage(StageEnhance, StageResult{Status: StatusFailed, Error: err.Error()})
		p.logf(StageEnhance, "WARN", "Enhancement failed: %v", err)
		return text
	}

	p.stage(StageEnhance, StageResult{Status: StatusSuccess, Details: map[string]any{
		"improvements":     res.Improvements,
		"engagement_score": res.EngagementScore,
	}})
	p.logf(StageEnhance, "INFO", "Script enhanced - engagement score: %d", res.EngagementScore)
	return res.Script
}

func (p *production) visuals(ctx context.Context, text string) []string {
	p.logf(StageVisuals, "INFO", "Generating visuals...")
	if p.o.images == nil {
		p.stage(StageVisuals, StageResult{Status: StatusSkipped, Message: "no image backend configured"})
		p.logf(StageVisuals, "WARN", "Generation skipped: no image backend configured")
		return nil
	}

	images, err := p.o.images.Generate(ctx, llm.Truncate(text, visualPromptLen), comfyui.Options{})
	if err == nil {
		var frames []string
		frames, err = p.writeFrames(images)
		if err == nil {
			p.stage(StageVisuals, StageResult{Status: StatusSuccess, Details: map[string]any{
				"frame_count": len(frames),
				"frames_dir":  filepath.Join(p.session.dir, "visuals"),
			}})
			p.logf(StageVisuals, "INFO", "Generated %d frames", len(frames))
			return frames
		}
	}

	p.stage(StageVisuals, StageResult{Status: StatusFailed, Error: err.Error()})
	p.logf(StageVisuals, "WARN", "Generation failed: %v", err)
	return nil
}

func (p *production) writeFrames(images [][]byte) ([]string, error) {
	frames := make([]string, 0, len(images))
	for i, img := range images {
		path := p.session.framePath(i)
		if err := os.WriteFile(path, img, 0644); err != nil {
			return nil, fmt.Errorf("save frame: %w", err)
		}
		frames = append(frames, path)
	}
	return frames, nil
}

func (p *production) voice(ctx context.Context, text string) (string, error) {
	p.logf(StageVoice, "INFO", "Synthesizing voice...")

	voiceID := p.voiceID()
	audio, err := p.o.tts.Synthesize(ctx, text, speech.Settings{VoiceID: voiceID})
	if err == nil {
		err = os.WriteFile(p.session.narrationPath(), audio, 0644)
	}
	if err != nil {
		return "", p.fail(StageVoice, err)
	}

	p.stage(StageVoice, StageResult{Status: StatusSuccess, Details: map[string]any{
		"audio_path": p.session.narrationPath(),
		"voice_id":   voiceID,
	}})
	return p.session.narrationPath(), nil
}

// voiceID prefers the request's voice, then the channel preset's. Empty
// leaves the provider default.
func (p *production) voiceID() string {
	if p.req.Voice != "" {
		return catalog.VoiceID(p.req.Voice)
	}
	if ch, err := catalog.LookupChannel(p.req.Channel); err == nil {
		return ch.Voice.ID
	}
	return ""
}

func (p *production) compose(ctx context.Context, frames []string, audio string) (string, error) {
	p.logf(StageCompose, "INFO", "Composing video...")
	if len(frames) == 0 {
		return "", p.fail(StageCompose, ErrNoFrames)
	}

	out := p.session.videoPath("final_video.mp4")
	err := p.o.composer.FromImages(ctx, video.SlideshowRequest{
		Frames: frames,
		Audio:  audio,
		Output: out,
		FPS:    p.o.cfg.Video.FPS,
	})
	if err != nil {
		return "", p.fail(StageCompose, err)
	}

	if p.req.Title != "" {
		titled := p.session.videoPath("final_video_titled.mp4")
		err := p.o.composer.OverlayText(ctx, out, titled, video.TextOverlay{
			Text:     p.req.Title,
			Position: "top_center",
			Duration: titleOverlaySecs,
			FontSize: titleOverlaySize,
			Color:    titleOverlayColor,
		})
		if err != nil {
			return "", p.fail(StageCompose, err)
		}
		out = titled
	}

	final := p.session.videoPath("final_video_youtube.mp4")
	if err := p.o.composer.ExportForYouTube(ctx, out, final); err != nil {
		return "", p.fail(StageCompose, err)
	}

	p.stage(StageCompose, StageResult{Status: StatusSuccess, Details: map[string]any{"video_path": final}})
	return final, nil
}

func (p *production) publish(ctx context.Context, videoPath string) *distribution.Result {
	p.logf(StagePublish, "INFO", "Publishing to YouTube...")

	res, err := p.doPublish(ctx, videoPath)
	if err != nil {
		p.stage(StagePublish, StageResult{Status: StatusFailed, Error: err.Error()})
		p.logf(StagePublish, "WARN", "Publishing failed: %v", err)
		return &distribution.Result{Status: StatusFailed, Error: err.Error()}
	}

	p.stage(StagePublish, StageResult{Status: StatusSuccess, Details: map[string]any{
		"platform": res.Platform,
		"id":       res.ID,
		"url":      res.URL,
		"response": res.Response,
	}})
	p.logf(StagePublish, "INFO", "Published via %s", res.Platform)
	return res
}

func (p *production) doPublish(ctx context.Context, videoPath string) (*distribution.Result, error) {
	if p.o.publisher == nil {
		return nil, distribution.ErrNotConfigured
	}

	title := catalog.PrepareTitle(p.req.Title)
	if title == "" {
		title = llm.FallbackTitle
	}
	description := optimize.Description(p.req.Description, p.req.Tags)
	tags := p.req.Tags
	if len(tags) == 0 {
		tags = optimize.SuggestTags(title, p.req.Description, p.req.Niche)
	}

	var branding *distribution.Branding
	category := ""
	if ch, err := catalog.LookupChannel(p.req.Channel); err == nil {
		branding = &distribution.Branding{ChannelName: ch.Name, Outro: ch.Metadata.Outro}
		category = ch.Metadata.CategoryID
	}
	meta := distribution.PrepareMetadata(title, description, tags, branding)
	if category == "" {
		category = meta.CategoryID
	}

	return p.o.publisher.Publish(ctx, distribution.Video{
		Path:        videoPath,
		Title:       meta.Title,
		Description: meta.Description,
		Tags:        meta.Tags,
		CategoryID:  category,
		PublishAt:   p.req.PublishAt,
	})
}

// archive uploads the project directory when a store is configured.
// Failures only warn.
func (p *production) archive(ctx context.Context) {
	if p.o.store == nil {
		return
	}

	prefix := storage.Key(p.o.cfg.Storage.Prefix, filepath.Base(p.session.dir))
	keys, err := storage.UploadDir(ctx, p.o.store, p.session.dir, prefix)
	if err != nil {
		p.stage(StageArchive, StageResult{Status: StatusFailed, Error: err.Error()})
		p.logf(StageArchive, "WARN", "Archive failed: %v", err)
	} else {
		p.stage(StageArchive, StageResult{Status: StatusSuccess, Details: map[string]any{"objects": len(keys)}})
		p.logf(StageArchive, "INFO", "Archived %d files under %s", len(keys), prefix)
		p.result.Artifacts = keys
	}

	if err := writeMetadata(p.session.metadataPath(), p.meta); err != nil {
		slog.Warn("Failed to update metadata after archive", "error", err)
	}
}

func (p *production) finish(runErr error) error {
	completed := p.o.now().UTC()
	p.meta.CompletedAt = &completed

	if runErr != nil {
		p.result.Status = StatusFailed
		p.result.Error = runErr.Error()
		p.logf("orchestrator", "ERROR", "Production failed: %v", runErr)
	} else {
		p.result.Status = StatusSuccess
		p.logf("orchestrator", "INFO", "Production complete! Video: %s", p.result.Video)
	}

	p.meta.Result = p.result
	return writeMetadata(p.session.metadataPath(), p.meta)
}

func (p *production) fail(stage string, err error) error {
	p.stage(stage, StageResult{Status: StatusFailed, Error: err.Error()})
	p.logf(stage, "ERROR", "%s failed: %v", stage, err)
	return &StageError{Stage: stage, Err: err}
}

func (p *production) stage(name string, r StageResult) {
	p.meta.Stages[name] = r
}

func (p *production) logf(stage, status, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.session.log.write(stage, status, msg)

	attrs := []any{"project", p.session.name, "stage", stage}
	switch status {
	case "ERROR":
		slog.Error(msg, attrs...)
	case "WARN":
		slog.Warn(msg, attrs...)
	default:
		slog.Info(msg, attrs...)
	}
}
