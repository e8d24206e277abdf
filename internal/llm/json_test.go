package llm

import (
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"plain", `{"hook": "Did you know?"}`, "Did you know?", false},
		{"fenced", "Here you go:\n```json\n{\"hook\": \"fenced\"}\n```", "fenced", false},
		{"fencedNoLang", "```\n{\"hook\": \"bare fence\"}\n```", "bare fence", false},
		{"surroundedByProse", `Sure! {"hook": "inline"} Hope that helps.`, "inline", false},
		{"garbage", "no json here", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				Hook string `json:"hook"`
			}
			err := DecodeJSON(tt.content, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if out.Hook != tt.want {
				t.Errorf("Hook = %q, want %q", out.Hook, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo wörld", 5); got != "héllo" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate() = %q", got)
	}
}

func TestTargetWords(t *testing.T) {
	tests := []struct {
		seconds int
		want    int
	}{
		{600, 1500},
		{60, 150},
		{30, 75},
		{0, 0},
	}
	for _, tt := range tests {
		if got := (EnhanceOptions{DurationSeconds: tt.seconds}).TargetWords(); got != tt.want {
			t.Errorf("TargetWords(%d) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}
