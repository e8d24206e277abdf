// Package distribution publishes finished videos to YouTube, either through
// an automation webhook (n8n, Make) or directly through the Data API.
package distribution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 5000
	DefaultCategoryID    = "28" // Science & Technology
	DefaultPrivacy       = "public"
)

var ErrNotConfigured = errors.New("publisher not configured")

// Video describes an upload. PublishAt is an RFC 3339 timestamp; empty
// publishes immediately.
type Video struct {
	Path          string
	Title         string
	Description   string
	Tags          []string
	CategoryID    string
	Privacy       string
	ThumbnailPath string
	PublishAt     string
}

type Result struct {
	ID       string         `json:"id,omitempty"`
	URL      string         `json:"url,omitempty"`
	Status   string         `json:"status"`
	Platform string         `json:"platform"`
	Error    string         `json:"error,omitempty"`
	Response map[string]any `json:"response,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, v Video) (*Result, error)
	Platform() string
}

// Validate enforces YouTube's title and description limits.
func (v Video) Validate() error {
	if n := utf8.RuneCountInString(v.Title); n > MaxTitleLength {
		return fmt.Errorf("title too long (%d/%d chars)", n, MaxTitleLength)
	}
	if n := utf8.RuneCountInString(v.Description); n > MaxDescriptionLength {
		return fmt.Errorf("description too long (%d/%d chars)", n, MaxDescriptionLength)
	}
	return nil
}

type Branding struct {
	ChannelName string `json:"channel_name"`
	Outro       string `json:"channel_outro"`
}

type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"categoryId"`
}

// PrepareMetadata applies channel branding and trims the result to
// YouTube's limits.
func PrepareMetadata(title, description string, tags []string, b *Branding) Metadata {
	if b != nil {
		title = title + " | " + b.ChannelName
		description = description + "\n\n" + b.Outro
	}
	if tags == nil {
		tags = []string{}
	}
	return Metadata{
		Title:       truncate(strings.TrimSpace(title), MaxTitleLength),
		Description: truncate(strings.TrimSpace(description), MaxDescriptionLength),
		Tags:        tags,
		CategoryID:  DefaultCategoryID,
	}
}

type Status struct {
	UploadID string `json:"upload_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// UploadStatus reports on a webhook upload. Webhook automations do not
// expose progress, so uploads stay pending until checked in n8n or Make.
func UploadStatus(uploadID string) Status {
	return Status{
		UploadID: uploadID,
		Status:   "pending",
		Message:  "Check n8n/Make dashboard for detailed status",
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
