package catalog

import (
	"strings"
)

type channelFile struct {
	Voices     map[string]Voice           `yaml:"voices"`
	Channels   map[string]Channel         `yaml:"channels"`
	Expanded   map[string]ExpandedChannel `yaml:"expanded"`
	Guidelines []Guideline                `yaml:"guidelines"`
}

type Voice struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
}

type VoiceSettings struct {
	ID         string  `yaml:"id" json:"voice_id"`
	Stability  float64 `yaml:"stability" json:"stability"`
	Similarity float64 `yaml:"similarity" json:"similarity"`
}

type ChannelMetadata struct {
	CategoryID string   `yaml:"category_id" json:"category_id"`
	Tags       []string `yaml:"tags" json:"tags"`
	Intro      string   `yaml:"intro" json:"description_intro"`
	Outro      string   `yaml:"outro" json:"description_outro"`
}

type Pacing struct {
	Intro int `yaml:"intro" json:"intro_duration"`
	Main  int `yaml:"main" json:"main_content_duration"`
	Outro int `yaml:"outro" json:"outro_duration"`
}

type Branding struct {
	Watermark      string `yaml:"watermark" json:"watermark"`
	IntroAnimation string `yaml:"intro_animation" json:"intro_animation"`
	MusicTone      string `yaml:"music_tone" json:"music_tone"`
}

// Channel is one of the base channel presets modelled on reference
// channels.
type Channel struct {
	Name           string          `yaml:"name" json:"name"`
	Reference      string          `yaml:"reference" json:"reference"`
	Description    string          `yaml:"description" json:"description"`
	VisualStyle    string          `yaml:"visual_style" json:"visual_style"`
	Voice          VoiceSettings   `yaml:"voice" json:"voice_settings"`
	Metadata       ChannelMetadata `yaml:"metadata" json:"metadata_template"`
	ThumbnailStyle string          `yaml:"thumbnail_style" json:"thumbnail_style"`
	Pacing         Pacing          `yaml:"pacing" json:"pacing"`
	Branding       Branding        `yaml:"branding" json:"branding"`
}

type ExpandedVoice struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Tone string `yaml:"tone" json:"tone"`
}

// ExpandedChannel is a niche preset. Gospel and custom channels carry
// extra fields.
type ExpandedChannel struct {
	Name                string        `yaml:"name" json:"name"`
	Reference           string        `yaml:"reference" json:"reference"`
	Category            string        `yaml:"category" json:"category"`
	VisualStyle         string        `yaml:"visual_style" json:"visual_style"`
	AnimationType       string        `yaml:"animation_type" json:"animation_type"`
	Voice               ExpandedVoice `yaml:"voice" json:"voice"`
	Pacing              string        `yaml:"pacing" json:"pacing"`
	DurationRange       [2]int        `yaml:"duration_range" json:"video_duration_range"`
	ColorPalette        string        `yaml:"color_palette" json:"color_palette"`
	DescriptionTemplate string        `yaml:"description_template" json:"description_template"`
	Tags                []string      `yaml:"tags" json:"tags"`
	SpecialtyGenerator  string        `yaml:"specialty_generator,omitempty" json:"specialty_generator,omitempty"`
	GospelThemes        []string      `yaml:"gospel_themes,omitempty" json:"gospel_themes,omitempty"`
	GospelStyles        []string      `yaml:"gospel_styles,omitempty" json:"gospel_styles,omitempty"`
	Custom              bool          `yaml:"custom,omitempty" json:"custom,omitempty"`
}

type Guideline struct {
	Category string   `yaml:"category" json:"category"`
	Items    []string `yaml:"items" json:"items"`
}

func Channels() map[string]Channel {
	return data().channels.Channels
}

func ChannelKeys() []string {
	return sortedKeys(data().channels.Channels)
}

func LookupChannel(key string) (Channel, error) {
	return lookup("Channel template", data().channels.Channels, key)
}

func ExpandedChannels() map[string]ExpandedChannel {
	return data().channels.Expanded
}

func ExpandedChannelKeys() []string {
	return sortedKeys(data().channels.Expanded)
}

func LookupExpandedChannel(key string) (ExpandedChannel, error) {
	return lookup("Channel template", data().channels.Expanded, key)
}

func Voices() map[string]Voice {
	return data().channels.Voices
}

// VoiceID resolves a voice name such as "Rachel" to its id. Unknown
// names are returned unchanged so raw ids pass through.
func VoiceID(nameOrID string) string {
	if v, ok := data().channels.Voices[nameOrID]; ok {
		return v.ID
	}
	return nameOrID
}

func Guidelines() []Guideline {
	return data().channels.Guidelines
}

var disclosurePhrases = []string{"AI-generated", "AI-created", "AI narrator", "AI voice"}

// PrepareTitle drops phrases that flag a video as machine-made.
func PrepareTitle(title string) string {
	for _, phrase := range disclosurePhrases {
		title = strings.ReplaceAll(title, phrase, "")
	}
	return strings.TrimSpace(title)
}

// PrepareDescription wraps a custom description with the channel's
// intro and outro lines.
func (c Channel) PrepareDescription(custom string) string {
	return c.Metadata.Intro + "\n\n" + custom + "\n\n" + c.Metadata.Outro
}
