package optimize

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDescription(t *testing.T) {
	got := Description("Base text", []string{"ai", "gpu"})
	want := "Base text\n\n---\n🔔 Subscribe for more!\n👍 Like if you found this helpful\n💬 Share your thoughts in the comments\n\nai • gpu"
	if got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
}

func TestDescriptionKeywordLimit(t *testing.T) {
	keywords := []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9", "k10", "k11", "k12"}
	got := Description("", keywords)
	if strings.Contains(got, "k11") {
		t.Errorf("Description() kept more than 10 keywords: %q", got)
	}
	if !strings.HasSuffix(got, "k9 • k10") {
		t.Errorf("Description() = %q", got)
	}
}

func TestDescriptionCapped(t *testing.T) {
	got := Description(strings.Repeat("x", 6000), nil)
	if n := len([]rune(got)); n != 5000 {
		t.Errorf("length = %d, want 5000", n)
	}
}

func TestSuggestTags(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		niche       string
		want        []string
	}{
		{
			name:  "technology",
			title: "Neural Networks Explained",
			niche: "technology",
			want:  []string{"AI", "tech", "innovation", "future", "explained", "neural", "networks"},
		},
		{
			name:        "documentaryDedupes",
			title:       "The Real Story",
			description: "A story about real people, real places and real history",
			niche:       "documentary",
			want:        []string{"documentary", "storytelling", "real", "authentic", "narrative", "story", "about", "people", "places", "history"},
		},
		{
			name:  "unknownNicheFallsBack",
			title: "Hi",
			niche: "cooking",
			want:  []string{"AI", "tech", "innovation", "future", "explained"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestTags(tt.title, tt.description, tt.niche)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SuggestTags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSuggestTagsDoesNotMutateBase(t *testing.T) {
	_ = SuggestTags("Something Interesting", "", "news")
	if n := len(nicheTags["news"]); n != 5 {
		t.Errorf("base tags mutated: %v", nicheTags["news"])
	}
}
