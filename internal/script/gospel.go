package script

import (
	"fmt"
	"strings"

	"omniflow/internal/catalog"
)

const (
	defaultArtist         = "Gospel Artist"
	defaultGospelTheme    = "worship"
	defaultGospelStyle    = "contemporary_gospel"
	defaultGospelDuration = 8
	gospelChannel         = "gospel_music"
	gospelVideoStyle      = "cinematic_storytelling"
	defaultViralPotential = "High"
)

type GospelRequest struct {
	Title     string `json:"title"`
	Theme     string `json:"theme"`
	Style     string `json:"music_style"`
	Duration  int    `json:"duration_minutes"`
	Artist    string `json:"artist,omitempty"`
	Testimony bool   `json:"include_testimony,omitempty"`
}

type Narrative struct {
	Text            string `json:"narrative"`
	DurationSeconds int    `json:"duration_seconds"`
	Pacing          string `json:"pacing,omitempty"`
}

type GospelScript struct {
	Theme           string                      `json:"theme"`
	Characteristics []string                    `json:"music_style"`
	Script          Narrative                   `json:"script"`
	Duration        int                         `json:"duration_minutes"`
	ColorPalette    string                      `json:"color_palette"`
	Visuals         []string                    `json:"visual_suggestions"`
	Music           catalog.MusicRecommendation `json:"music_recommendations"`
	Pacing          string                      `json:"pacing"`
	Energy          string                      `json:"energy_level"`
	ViralPotential  string                      `json:"viral_potential"`
	Tags            []string                    `json:"tags"`
}

type VideoMetadata struct {
	Duration        int    `json:"duration_minutes"`
	ChannelTemplate string `json:"channel_template"`
	VideoStyle      string `json:"video_style"`
	VoiceID         string `json:"voice_id"`
}

type VisualProduction struct {
	ColorPalette   string   `json:"color_palette"`
	PrimaryVisuals []string `json:"primary_visuals"`
	Transitions    []string `json:"transitions"`
	Lighting       []string `json:"lighting"`
}

type AudioProduction struct {
	MusicStyle      string   `json:"music_style"`
	Characteristics []string `json:"characteristics"`
	Tempo           string   `json:"tempo_bpm"`
	Mood            string   `json:"mood"`
	ProductionTips  []string `json:"production_tips"`
}

type YouTubeOptimization struct {
	Title               string   `json:"title"`
	Tags                []string `json:"tags"`
	DescriptionElements []string `json:"description_elements"`
}

type QualityMetrics struct {
	ViralPotential    string   `json:"viral_potential"`
	EngagementFactors []string `json:"engagement_factors"`
}

// GospelPlan is everything needed to produce one gospel music video.
type GospelPlan struct {
	Title    string              `json:"title"`
	Artist   string              `json:"artist"`
	Metadata VideoMetadata       `json:"video_metadata"`
	Script   Narrative           `json:"script"`
	Visual   VisualProduction    `json:"visual_production"`
	Audio    AudioProduction     `json:"audio_production"`
	YouTube  YouTubeOptimization `json:"youtube_optimization"`
	Quality  QualityMetrics      `json:"quality_metrics"`
}

func (r *GospelRequest) applyDefaults() {
	if r.Theme == "" {
		r.Theme = defaultGospelTheme
	}
	if r.Style == "" {
		r.Style = defaultGospelStyle
	}
	if r.Duration <= 0 {
		r.Duration = defaultGospelDuration
	}
	if r.Artist == "" {
		r.Artist = defaultArtist
	}
}

// BuildGospelScript renders the narration for a theme and music style.
func BuildGospelScript(req GospelRequest) (*GospelScript, error) {
	req.applyDefaults()

	theme, err := catalog.LookupGospelTheme(req.Theme)
	if err != nil {
		return nil, err
	}
	style, err := catalog.LookupGospelStyle(req.Style)
	if err != nil {
		return nil, err
	}

	text, err := render(req.Theme, theme.Script, struct{ Duration int }{req.Duration})
	if err != nil {
		return nil, err
	}

	if req.Testimony {
		testimony, err := render("testimony", catalog.TestimonyTemplate(), struct{ ThemeName string }{theme.Name})
		if err != nil {
			return nil, err
		}
		text = strings.TrimRight(text, "\n") + "\n\n[PERSONAL TESTIMONY]\n" + testimony
	}

	return &GospelScript{
		Theme:           theme.Name,
		Characteristics: style.Characteristics,
		Script: Narrative{
			Text:            text,
			DurationSeconds: req.Duration * 60,
			Pacing:          style.Pacing,
		},
		Duration:       req.Duration,
		ColorPalette:   style.ColorScheme,
		Visuals:        catalog.ThemeVisuals(theme),
		Music:          style.Music,
		Pacing:         style.Pacing,
		Energy:         style.Energy,
		ViralPotential: defaultViralPotential,
		Tags:           gospelTags(theme.Name),
	}, nil
}

func gospelTags(themeName string) []string {
	compact := strings.ReplaceAll(strings.ReplaceAll(themeName, " & ", ""), " ", "")
	return []string{"Gospel", "Music", "Spiritual", "Christian", "Worship", "Faith", compact}
}

// BuildGospelPlan assembles the full production plan for a gospel
// music video.
func BuildGospelPlan(req GospelRequest) (*GospelPlan, error) {
	req.applyDefaults()

	s, err := BuildGospelScript(req)
	if err != nil {
		return nil, err
	}

	return &GospelPlan{
		Title:  req.Title,
		Artist: req.Artist,
		Metadata: VideoMetadata{
			Duration:        req.Duration,
			ChannelTemplate: gospelChannel,
			VideoStyle:      gospelVideoStyle,
			VoiceID:         catalog.VoiceID("Rachel"),
		},
		Script: s.Script,
		Visual: VisualProduction{
			ColorPalette:   s.ColorPalette,
			PrimaryVisuals: s.Visuals,
			Transitions:    catalog.GospelTransitions(),
			Lighting:       catalog.GospelLighting(),
		},
		Audio: AudioProduction{
			MusicStyle:      req.Style,
			Characteristics: s.Music.Instruments,
			Tempo:           s.Music.Tempo,
			Mood:            s.Music.Mood,
			ProductionTips:  s.Music.Tips,
		},
		YouTube: YouTubeOptimization{
			Title: req.Title,
			Tags:  s.Tags,
			DescriptionElements: []string{
				fmt.Sprintf("Divine music celebrating %s", s.Theme),
				fmt.Sprintf("Artist: %s", req.Artist),
				fmt.Sprintf("Duration: %d minutes", req.Duration),
				"Subscribe for more Gospel music",
				"Lyrics and message of faith in every note",
			},
		},
		Quality: QualityMetrics{
			ViralPotential:    s.ViralPotential,
			EngagementFactors: catalog.GospelEngagementFactors(),
		},
	}, nil
}

// GospelExampleRequest turns a catalog preset into a request.
func GospelExampleRequest(key string) (GospelRequest, error) {
	ex, err := catalog.LookupGospelExample(key)
	if err != nil {
		return GospelRequest{}, err
	}
	return GospelRequest{
		Title:    ex.Title,
		Theme:    ex.Theme,
		Style:    ex.Style,
		Duration: ex.Duration,
	}, nil
}
