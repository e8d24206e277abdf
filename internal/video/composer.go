// Package video drives ffmpeg to turn frames and narration into a
// YouTube-ready MP4.
package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultFFmpegPath   = "ffmpeg"
	defaultFPS          = 24
	defaultFrameSeconds = 5.0
)

var durationPattern = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+\.\d+)`)

// Positions maps overlay anchors to drawtext x:y expressions.
var Positions = map[string]string{
	"top_center":    "(w-text_w)/2:50",
	"top_left":      "50:50",
	"center":        "(w-text_w)/2:(h-text_h)/2",
	"bottom_center": "(w-text_w)/2:h-text_h-50",
}

// youtubeEncoding is the H.264 high profile preset YouTube ingests
// without re-encoding.
var youtubeEncoding = []string{
	"-c:v", "libx264",
	"-profile:v", "high",
	"-level", "4.1",
	"-preset", "slow",
	"-crf", "18",
	"-pix_fmt", "yuv420p",
}

var youtubeAudio = []string{"-c:a", "aac", "-b:a", "128k"}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type Composer struct {
	ffmpegPath string
	run        runFunc
}

func NewComposer(ffmpegPath string) *Composer {
	if ffmpegPath == "" {
		ffmpegPath = defaultFFmpegPath
	}
	return &Composer{ffmpegPath: ffmpegPath, run: execRun}
}

type SlideshowRequest struct {
	Frames       []string
	Audio        string
	Output       string
	FPS          int
	FrameSeconds float64
}

type TextOverlay struct {
	Text     string
	Position string
	Duration float64
	FontSize int
	Color    string
}

type Info struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Raw             string  `json:"-"`
}

func (c *Composer) ffmpeg(ctx context.Context, args ...string) error {
	if output, err := c.run(ctx, c.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, output: %s", err, string(output))
	}
	return nil
}

// FromImages renders frames as a slideshow. Without an explicit frame
// length each frame gets an equal share of the narration.
func (c *Composer) FromImages(ctx context.Context, req SlideshowRequest) error {
	if len(req.Frames) == 0 {
		return errors.New("no frames to compose")
	}
	if req.FPS <= 0 {
		req.FPS = defaultFPS
	}
	if req.FrameSeconds <= 0 && req.Audio != "" {
		if info, err := c.Info(ctx, req.Audio); err == nil && info.DurationSeconds > 0 {
			req.FrameSeconds = info.DurationSeconds / float64(len(req.Frames))
		}
	}
	if req.FrameSeconds <= 0 {
		req.FrameSeconds = defaultFrameSeconds
	}

	if err := os.MkdirAll(filepath.Dir(req.Output), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	listPath := req.Output + ".frames.txt"
	list, err := concatList(req.Frames, req.FrameSeconds)
	if err != nil {
		return err
	}
	if err := os.WriteFile(listPath, []byte(list), 0644); err != nil {
		return fmt.Errorf("write frame list: %w", err)
	}
	defer func() { _ = os.Remove(listPath) }()

	return c.ffmpeg(ctx, slideshowArgs(listPath, req)...)
}

// concatList builds a concat demuxer script. The last frame is listed
// twice so its duration is honoured.
func concatList(frames []string, seconds float64) (string, error) {
	var b strings.Builder
	var last string
	for _, f := range frames {
		abs, err := filepath.Abs(f)
		if err != nil {
			return "", fmt.Errorf("resolve frame path: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\nduration %.3f\n", abs, seconds)
		last = abs
	}
	fmt.Fprintf(&b, "file '%s'\n", last)
	return b.String(), nil
}

func slideshowArgs(listPath string, req SlideshowRequest) []string {
	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", listPath}
	if req.Audio != "" {
		args = append(args, "-i", req.Audio)
	}
	args = append(args, "-r", strconv.Itoa(req.FPS))
	args = append(args, youtubeEncoding...)
	if req.Audio != "" {
		args = append(args, youtubeAudio...)
		args = append(args, "-shortest")
	}
	return append(args, req.Output)
}

// OverlayText burns text into the first seconds of a video.
func (c *Composer) OverlayText(ctx context.Context, in, out string, o TextOverlay) error {
	return c.ffmpeg(ctx, overlayArgs(in, out, o)...)
}

func overlayArgs(in, out string, o TextOverlay) []string {
	xy, ok := Positions[o.Position]
	if !ok {
		xy = Positions["top_center"]
	}
	if o.FontSize <= 0 {
		o.FontSize = 48
	}
	if o.Color == "" {
		o.Color = "white"
	}
	if o.Duration <= 0 {
		o.Duration = 5
	}

	x, y, _ := strings.Cut(xy, ":")

	filter := fmt.Sprintf(
		"drawtext=text='%s':fontsize=%d:fontcolor=%s:box=1:boxcolor=black@0.5:x=%s:y=%s:enable='lt(t,%s)'",
		escapeDrawtext(o.Text), o.FontSize, o.Color, x, y, strconv.FormatFloat(o.Duration, 'f', -1, 64),
	)
	return []string{"-y", "-i", in, "-vf", filter, "-c:a", "copy", out}
}

var drawtextEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, "’",
	`:`, `\:`,
	`%`, `\%`,
)

func escapeDrawtext(s string) string {
	return drawtextEscaper.Replace(s)
}

// Concat joins videos with identical encoding without re-encoding.
func (c *Composer) Concat(ctx context.Context, inputs []string, out string) error {
	if len(inputs) == 0 {
		return errors.New("no videos to concatenate")
	}

	var b strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return fmt.Errorf("resolve video path: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", abs)
	}

	listPath := out + ".concat.txt"
	if err := os.WriteFile(listPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer func() { _ = os.Remove(listPath) }()

	return c.ffmpeg(ctx, "-y", "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", out)
}

func (c *Composer) ExportForYouTube(ctx context.Context, in, out string) error {
	return c.ffmpeg(ctx, exportArgs(in, out)...)
}

func exportArgs(in, out string) []string {
	args := []string{"-y", "-i", in}
	args = append(args, youtubeEncoding...)
	args = append(args, youtubeAudio...)
	return append(args, "-movflags", "+faststart", out)
}

// Info reads the container duration from ffmpeg's banner. ffmpeg exits
// non-zero without an output file, so only the parsed text matters.
func (c *Composer) Info(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	output, _ := c.run(ctx, c.ffmpegPath, "-hide_banner", "-i", path)
	return parseInfo(string(output))
}

func parseInfo(output string) (*Info, error) {
	m := durationPattern.FindStringSubmatch(output)
	if m == nil {
		return nil, errors.New("no duration in ffmpeg output")
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec, _ := strconv.ParseFloat(m[3], 64)
	return &Info{
		DurationSeconds: float64(h*3600+mins*60) + sec,
		Raw:             output,
	}, nil
}

// Available reports whether the ffmpeg binary runs.
func (c *Composer) Available(ctx context.Context) error {
	if _, err := c.run(ctx, c.ffmpegPath, "-version"); err != nil {
		return fmt.Errorf("ffmpeg not available at %q: %w", c.ffmpegPath, err)
	}
	return nil
}
