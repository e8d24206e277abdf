// Package optimize builds YouTube descriptions and tag lists.
package optimize

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	maxDescription = 5000
	maxKeywords    = 10
	maxTitleWords  = 5
	maxTags        = 30
)

const callToAction = "\n\n---\n🔔 Subscribe for more!\n👍 Like if you found this helpful\n💬 Share your thoughts in the comments"

var wordPattern = regexp.MustCompile(`\b\w{4,}\b`)

var nicheTags = map[string][]string{
	"documentary": {"documentary", "storytelling", "real", "authentic", "narrative"},
	"technology":  {"AI", "tech", "innovation", "future", "explained"},
	"education":   {"education", "learning", "tutorial", "how to", "guide"},
	"news":        {"news", "analysis", "current events", "update", "commentary"},
}

// Description appends the subscribe call-to-action and a keyword line.
func Description(base string, keywords []string) string {
	out := base + callToAction
	if len(keywords) > 0 {
		out += "\n\n" + strings.Join(keywords[:min(len(keywords), maxKeywords)], " • ")
	}
	if utf8.RuneCountInString(out) > maxDescription {
		out = string([]rune(out)[:maxDescription])
	}
	return out
}

// SuggestTags starts from the niche's base tags and adds the first few
// distinct long words of the title and description. Unknown niches fall
// back to technology.
func SuggestTags(title, description, niche string) []string {
	base, ok := nicheTags[niche]
	if !ok {
		base = nicheTags["technology"]
	}
	tags := slices.Clone(base)

	added := 0
	for _, w := range wordPattern.FindAllString(strings.ToLower(title+" "+description), -1) {
		if added == maxTitleWords {
			break
		}
		if slices.Contains(tags, w) {
			continue
		}
		tags = append(tags, w)
		added++
	}

	return tags[:min(len(tags), maxTags)]
}
