// Package automation builds importable n8n and Make workflow templates
// for publishing finished videos.
package automation

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"omniflow/internal/catalog"
)

const (
	KindN8NYouTube       = "n8n-youtube"
	KindN8NMultiPlatform = "n8n-multi-platform"
	KindMakeYouTube      = "make-youtube"

	youtubeCategory = "28"
)

type N8NWorkflow struct {
	Name        string                    `json:"name"`
	Nodes       []N8NNode                 `json:"nodes"`
	Connections map[string]N8NConnections `json:"connections"`
}

type N8NNode struct {
	Parameters  map[string]any `json:"parameters"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion int            `json:"typeVersion"`
	Position    [2]int         `json:"position"`
}

type N8NConnections struct {
	Main [][]N8NLink `json:"main"`
}

type N8NLink struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type MakeScenario struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Modules     []MakeModule `json:"modules"`
	Connections [][2]int     `json:"connections"`
}

type MakeModule struct {
	ID         int            `json:"id"`
	Module     string         `json:"module"`
	Parameters map[string]any `json:"parameters"`
}

type template struct {
	file  string
	build func() any
}

var templates = map[string]template{
	KindN8NYouTube:       {file: "n8n_youtube_automation.json", build: func() any { return N8NYouTube() }},
	KindN8NMultiPlatform: {file: "n8n_multi_platform.json", build: func() any { return N8NMultiPlatform() }},
	KindMakeYouTube:      {file: "make_youtube_automation.json", build: func() any { return MakeYouTube() }},
}

func mainLink(node string) N8NConnections {
	return N8NConnections{Main: [][]N8NLink{{{Node: node, Type: "main"}}}}
}

func N8NYouTube() *N8NWorkflow {
	return &N8NWorkflow{
		Name: "OmniFlow: Upload to YouTube",
		Nodes: []N8NNode{
			{
				Parameters: map[string]any{
					"resource":      "video",
					"operation":     "upload",
					"title":         "{{ $json.videoTitle }}",
					"description":   "{{ $json.videoDescription }}",
					"tags":          "{{ $json.tags || 'AI, YouTube, Automation' }}",
					"categoryId":    youtubeCategory,
					"privacyStatus": "public",
					"videoFile":     "={{ $binary.videoFile }}",
					"autoGenerate":  true,
				},
				Name:        "YouTube Upload",
				Type:        "n8n-nodes-base.youtube",
				TypeVersion: 1,
				Position:    [2]int{250, 300},
			},
			{
				Parameters: map[string]any{
					"operation":   "upload",
					"resource":    "video",
					"title":       "{{ $json.videoTitle }}",
					"description": "{{ $json.videoDescription }}",
				},
				Name:        "Schedule Post",
				Type:        "n8n-nodes-base.spreadsheetTrigger",
				TypeVersion: 1,
				Position:    [2]int{500, 300},
			},
		},
		Connections: map[string]N8NConnections{
			"YouTube Upload": mainLink("Schedule Post"),
		},
	}
}

// N8NMultiPlatform fans a finished video out to YouTube, TikTok and
// Instagram, then posts the YouTube link to Slack.
func N8NMultiPlatform() *N8NWorkflow {
	node := func(name, typ string, x, y int, params map[string]any) N8NNode {
		return N8NNode{Parameters: params, Name: name, Type: typ, TypeVersion: 1, Position: [2]int{x, y}}
	}

	return &N8NWorkflow{
		Name: "OmniFlow: Multi-Platform Publishing",
		Nodes: []N8NNode{
			node("Input", "n8n-nodes-base.manualTrigger", 100, 100, map[string]any{"display": "{{ $json.videoTitle }}"}),
			node("Upload to YouTube", "n8n-nodes-base.youtube", 250, 100, map[string]any{"platform": "youtube"}),
			node("Upload to TikTok", "n8n-nodes-base.http", 250, 200, map[string]any{"platform": "tiktok"}),
			node("Upload to Instagram Reels", "n8n-nodes-base.instagram", 250, 300, map[string]any{"platform": "instagram"}),
			node("Notify", "n8n-nodes-base.slack", 400, 200, map[string]any{
				"message": "Video published! Check it out: {{ $json.youtubeUrl }}",
			}),
		},
		Connections: map[string]N8NConnections{
			"Input": {Main: [][]N8NLink{{
				{Node: "Upload to YouTube", Type: "main"},
				{Node: "Upload to TikTok", Type: "main"},
				{Node: "Upload to Instagram Reels", Type: "main"},
			}}},
			"Upload to YouTube": mainLink("Notify"),
		},
	}
}

func MakeYouTube() *MakeScenario {
	return &MakeScenario{
		Name:        "OmniFlow: YouTube Auto-Publish via Make",
		Description: "Automatically upload and publish videos to YouTube with custom metadata.",
		Modules: []MakeModule{
			{
				ID:         1,
				Module:     "builtin:BasicTrigger",
				Parameters: map[string]any{"label": "Trigger on video ready"},
			},
			{
				ID:     2,
				Module: "youtube:UploadVideo",
				Parameters: map[string]any{
					"title":         "{{ 1.videoTitle }}",
					"description":   "{{ 1.videoDescription }}",
					"videoFile":     "{{ 1.videoFile }}",
					"categoryId":    youtubeCategory,
					"privacyStatus": "public",
					"tags":          "{{ 1.tags }}",
				},
			},
			{
				ID:     3,
				Module: "google-sheets:AppendRow",
				Parameters: map[string]any{
					"spreadsheetId": "{{ env.SHEET_ID }}",
					"range":         "Analytics!A:Z",
					"values": []string{
						"{{ 2.videoId }}",
						"{{ 2.publishedAt }}",
						"{{ 1.videoTitle }}",
						"{{ env.CHANNEL_NAME }}",
					},
				},
			},
		},
		Connections: [][2]int{{1, 2}, {2, 3}},
	}
}

func Kinds() []string {
	return slices.Sorted(maps.Keys(templates))
}

// Lookup returns the template for kind, or a *catalog.UnknownKeyError.
func Lookup(kind string) (any, error) {
	t, ok := templates[kind]
	if !ok {
		return nil, &catalog.UnknownKeyError{Kind: "automation", Key: kind, Valid: Kinds()}
	}
	return t.build(), nil
}

// SaveAll writes every template into dir as indented JSON and returns
// the written paths in kind order.
func SaveAll(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create automations dir: %w", err)
	}

	var paths []string
	for _, kind := range Kinds() {
		t := templates[kind]
		data, err := json.MarshalIndent(t.build(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", kind, err)
		}
		path := filepath.Join(dir, t.file)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", t.file, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
