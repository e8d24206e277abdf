package groq

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"omniflow/internal/llm"
)

func userPrompt(t *testing.T, body map[string]any) string {
	t.Helper()
	messages, _ := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %v", body["messages"])
	}
	user, _ := messages[1].(map[string]any)
	content, _ := user["content"].(string)
	return content
}

func TestTrendingTopics(t *testing.T) {
	content := `{"topics": [{"topic": "AI agents", "competition": "high", "best_duration": "12 min"}, {"topic": "Local LLMs"}, {"topic": "RAG"}]}`
	var body map[string]any
	server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse(content)), &body)

	got, err := newTestClient(t, server.URL).TrendingTopics(context.Background(), "tech", 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []llm.TrendingTopic{
		{Topic: "AI agents", Competition: "high", BestDuration: "12 min"},
		{Topic: "Local LLMs"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TrendingTopics() mismatch (-want +got):\n%s", diff)
	}
	if prompt := userPrompt(t, body); !strings.Contains(prompt, "trending topics in tech") || !strings.Contains(prompt, "Provide 2 topics") {
		t.Errorf("prompt = %s", prompt)
	}
	if body["temperature"] != 0.7 {
		t.Errorf("temperature = %v, want 0.7", body["temperature"])
	}
}

func TestViralScoreClamped(t *testing.T) {
	content := `{"score": 140, "strengths": ["timely"], "hooks": ["open with the stat"], "posting_time": "Thu 17:00"}`
	var body map[string]any
	server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse(content)), &body)

	got, err := newTestClient(t, server.URL).ViralScore(context.Background(), "Why GPUs Matter", strings.Repeat("word ", 300), "tech")
	if err != nil {
		t.Fatal(err)
	}
	want := &llm.ViralScore{Score: 100, Strengths: []string{"timely"}, Hooks: []string{"open with the stat"}, PostingTime: "Thu 17:00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ViralScore() mismatch (-want +got):\n%s", diff)
	}
	prompt := userPrompt(t, body)
	if !strings.Contains(prompt, "Title: Why GPUs Matter") || strings.Count(prompt, "word") > 110 {
		t.Errorf("prompt not truncated or missing title:\n%s", prompt)
	}
}

func TestPoeticNarrationIsPlainText(t *testing.T) {
	var body map[string]any
	server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse("  The river remembers.\n")), &body)

	got, err := newTestClient(t, server.URL).PoeticNarration(context.Background(), "rivers", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "The river remembers." {
		t.Errorf("PoeticNarration() = %q", got)
	}
	if _, ok := body["response_format"]; ok {
		t.Error("poetic narration should not request JSON mode")
	}
	if !strings.Contains(userPrompt(t, body), "Style: inspirational") {
		t.Error("default style not applied")
	}
	if body["temperature"] != 0.8 {
		t.Errorf("temperature = %v, want 0.8", body["temperature"])
	}
}

func TestStoryArc(t *testing.T) {
	t.Run("sections", func(t *testing.T) {
		content := `{"sections": [{"name": "Hook", "start_minute": 0, "end_minute": 0.5, "music": "low drone"}], "pacing": "fast open"}`
		server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse(content)), nil)

		got, err := newTestClient(t, server.URL).StoryArc(context.Background(), "a lighthouse keeper", 0)
		if err != nil {
			t.Fatal(err)
		}
		want := &llm.StoryArc{
			Sections: []llm.ArcSection{{Name: "Hook", EndMinute: 0.5, Music: "low drone"}},
			Pacing:   "fast open",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("StoryArc() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse(`{"sections": []}`)), nil)
		if _, err := newTestClient(t, server.URL).StoryArc(context.Background(), "x", 5); err == nil {
			t.Error("StoryArc() should fail without sections")
		}
	})
}

func TestCharacterDevelopment(t *testing.T) {
	content := `{"starting_state": "guarded", "turning_points": ["the letter"], "transformation": "opens up"}`
	server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse(content)), nil)

	got, err := newTestClient(t, server.URL).CharacterDevelopment(context.Background(), "a retired sailor")
	if err != nil {
		t.Fatal(err)
	}
	want := &llm.CharacterArc{StartingState: "guarded", TurningPoints: []string{"the letter"}, Transformation: "opens up"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CharacterDevelopment() mismatch (-want +got):\n%s", diff)
	}
}

func TestRefineScript(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "refined", content: `{"refined_script": "[0:00] Hello.", "estimated_seconds": 540, "sound_cues": ["whoosh"]}`},
		{name: "emptyScript", content: `{"refined_script": "  "}`, wantErr: true},
		{name: "notJSON", content: "Sure, here it is", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse(tt.content)), &body)

			got, err := newTestClient(t, server.URL).RefineScript(context.Background(), "Hello.", 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RefineScript() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Script != "[0:00] Hello." || got.EstimatedSeconds != 540 {
				t.Errorf("RefineScript() = %+v", got)
			}
			if !strings.Contains(userPrompt(t, body), "Target duration: 600 seconds") {
				t.Error("default target not applied")
			}
		})
	}
}

func TestComedicTiming(t *testing.T) {
	server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse("So I said... [PAUSE 2sec] no.")), nil)

	got, err := newTestClient(t, server.URL).ComedicTiming(context.Background(), "So I said no.")
	if err != nil {
		t.Fatal(err)
	}
	if got != "So I said... [PAUSE 2sec] no." {
		t.Errorf("ComedicTiming() = %q", got)
	}
}

func TestVerifyHistory(t *testing.T) {
	content := `{"claims": [{"claim": "Rome fell in 476", "rating": "mostly accurate", "sources": ["Gibbon"]}]}`
	var body map[string]any
	server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse(content)), &body)
	client := newTestClient(t, server.URL)

	got, err := client.VerifyHistory(context.Background(), "Rome", []string{"Rome fell in 476"})
	if err != nil {
		t.Fatal(err)
	}
	want := []llm.ClaimCheck{{Claim: "Rome fell in 476", Rating: "mostly accurate", Sources: []string{"Gibbon"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("VerifyHistory() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(userPrompt(t, body), "- Rome fell in 476") {
		t.Error("claim missing from prompt")
	}

	if _, err := client.VerifyHistory(context.Background(), "Rome", nil); err == nil {
		t.Error("VerifyHistory() should reject an empty claim list")
	}
}

func TestHistoricalNarrative(t *testing.T) {
	var body map[string]any
	server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse("In 1492...")), &body)

	got, err := newTestClient(t, server.URL).HistoricalNarrative(context.Background(), "15th century", "Columbus", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != "In 1492..." {
		t.Errorf("HistoricalNarrative() = %q", got)
	}
	prompt := userPrompt(t, body)
	for _, want := range []string{"Period: 15th century", "Topic: Columbus", "Duration: 10 minutes"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestTimelineGuide(t *testing.T) {
	content := `{"events": [{"date": "1969-07-20", "event": "Moon landing", "visual": "grainy broadcast", "duration_seconds": 8}]}`
	var body map[string]any
	server := newTestServer(t, http.StatusOK, mustJSON(makeGroqResponse(content)), &body)
	client := newTestClient(t, server.URL)

	got, err := client.TimelineGuide(context.Background(), []llm.TimelineEvent{
		{Date: "1969-07-20", Event: "Moon landing"},
		{Event: "First orbit"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []llm.TimelineVisual{{Date: "1969-07-20", Event: "Moon landing", Visual: "grainy broadcast", DurationSeconds: 8}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TimelineGuide() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(userPrompt(t, body), "- Unknown: First orbit") {
		t.Error("undated event should render as Unknown")
	}

	if _, err := client.TimelineGuide(context.Background(), nil); err == nil {
		t.Error("TimelineGuide() should reject no events")
	}
}
