// Package speech turns narration text into audio.
package speech

import (
	"context"
	"strings"
)

const DefaultWordsPerMinute = 150.0

// Settings selects the voice and its tuning for one synthesis call.
// Zero values fall back to the provider's configured defaults.
type Settings struct {
	VoiceID    string
	Model      string
	Stability  float64
	Similarity float64
}

type Voice struct {
	ID          string `json:"voice_id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

type Provider interface {
	Synthesize(ctx context.Context, text string, s Settings) ([]byte, error)
	Voices(ctx context.Context) ([]Voice, error)
}

// EstimateSeconds is the narration length of text at wordsPerMinute.
func EstimateSeconds(text string, wordsPerMinute float64) float64 {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	return float64(len(strings.Fields(text))) / wordsPerMinute * 60.0
}

// EstimateAudioDuration assumes a 128 kbps MP3 stream.
func EstimateAudioDuration(audio []byte) float64 {
	bitrate := 128000.0
	return float64(len(audio)*8) / bitrate
}

// Merge fills zero fields of s from def.
func (s Settings) Merge(def Settings) Settings {
	if s.VoiceID == "" {
		s.VoiceID = def.VoiceID
	}
	if s.Model == "" {
		s.Model = def.Model
	}
	if s.Stability == 0 {
		s.Stability = def.Stability
	}
	if s.Similarity == 0 {
		s.Similarity = def.Similarity
	}
	return s
}
