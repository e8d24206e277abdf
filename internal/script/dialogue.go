package script

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minSceneSeconds = 3
	wordsPerSecond  = 3
)

type DialogueLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

var speakerLine = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 ]*?)\s*:\s*(.+)$`)

// emphasis matches paired markdown markers around a span. Markers glued
// to word characters, as in snake_case or 2*3*4, are left alone.
var emphasis = []*regexp.Regexp{
	regexp.MustCompile(`\B\*\*([^*\s](?:[^*]*?[^*\s])?)\*\*\B`),
	regexp.MustCompile(`\B\*([^*\s](?:[^*]*?[^*\s])?)\*\B`),
	regexp.MustCompile(`\b__([^_\s](?:[^_]*?[^_\s])?)__\b`),
	regexp.MustCompile(`\b_([^_\s](?:[^_]*?[^_\s])?)_\b`),
	regexp.MustCompile(`\B~~([^~\s](?:[^~]*?[^~\s])?)~~\B`),
	regexp.MustCompile(`\B~([^~\s](?:[^~]*?[^~\s])?)~\B`),
}

func stripEmphasis(s string) string {
	for _, re := range emphasis {
		s = re.ReplaceAllString(s, "$1")
	}
	return s
}

// ParseDialogue reads "Speaker: text" lines. Stage directions in
// parentheses or brackets are dropped, as is markdown emphasis.
func ParseDialogue(text string) []DialogueLine {
	var lines []DialogueLine
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "(") || strings.HasPrefix(raw, "[") {
			continue
		}

		m := speakerLine.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(m[2])
		if strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
			continue
		}
		body = stripEmphasis(body)
		lines = append(lines, DialogueLine{Speaker: strings.TrimSpace(m[1]), Text: body})
	}
	return lines
}

// Speakers lists speakers in order of first appearance.
func Speakers(lines []DialogueLine) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lines {
		if !seen[l.Speaker] {
			seen[l.Speaker] = true
			out = append(out, l.Speaker)
		}
	}
	return out
}

type Scene struct {
	Turn            int    `json:"turn"`
	Speaker         string `json:"speaker"`
	Dialogue        string `json:"dialogue"`
	Visual          string `json:"visual"`
	DurationSeconds int    `json:"duration_seconds"`
}

type Scenes struct {
	Scenes        []Scene `json:"scenes"`
	TotalDuration int     `json:"total_duration"`
}

// DialogueScenes lays out one scene per dialogue turn. Camera directions
// are assigned round-robin; without any, the visual names the speaker.
func DialogueScenes(lines []DialogueLine, directions []string) Scenes {
	out := Scenes{Scenes: make([]Scene, 0, len(lines))}
	for i, l := range lines {
		visual := fmt.Sprintf("%s speaking", l.Speaker)
		if len(directions) > 0 {
			visual = directions[i%len(directions)]
		}
		sec := max(minSceneSeconds, len(strings.Fields(l.Text))/wordsPerSecond)
		out.Scenes = append(out.Scenes, Scene{
			Turn:            i + 1,
			Speaker:         l.Speaker,
			Dialogue:        l.Text,
			Visual:          visual,
			DurationSeconds: sec,
		})
		out.TotalDuration += sec
	}
	return out
}
