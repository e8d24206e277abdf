// Package webhook hands finished videos to an n8n or Make automation
// that performs the actual YouTube upload.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"omniflow/internal/distribution"
	"omniflow/pkg/config"
	"omniflow/pkg/httputil"
)

const platform = "youtube-webhook"

var _ distribution.Publisher = (*Publisher)(nil)

type Publisher struct {
	url         string
	httpClient  httputil.Doer
	timeout     time.Duration
	categoryID  string
	privacy     string
	defaultTags []string
	now         func() time.Time
}

type Option func(*Publisher)

func WithHTTPClient(client httputil.Doer) Option {
	return func(p *Publisher) {
		p.httpClient = client
	}
}

type payload struct {
	VideoPath         string   `json:"videoPath"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Tags              []string `json:"tags"`
	CategoryID        string   `json:"categoryId"`
	PrivacyStatus     string   `json:"privacyStatus"`
	ThumbnailPath     *string  `json:"thumbnailPath"`
	SchedulePublishAt *string  `json:"schedulePublishAt"`
	Timestamp         string   `json:"timestamp"`
}

func New(url string, cfg config.PublishConfig, defaultTags []string, opts ...Option) *Publisher {
	p := &Publisher{
		url:         url,
		httpClient:  httputil.NewRetryClient(&http.Client{}, httputil.DefaultRetryConfig()),
		timeout:     cfg.Timeout,
		categoryID:  cfg.CategoryID,
		privacy:     cfg.PrivacyStatus,
		defaultTags: defaultTags,
		now:         time.Now,
	}
	if p.timeout <= 0 {
		p.timeout = 30 * time.Second
	}
	if p.categoryID == "" {
		p.categoryID = distribution.DefaultCategoryID
	}
	if p.privacy == "" {
		p.privacy = distribution.DefaultPrivacy
	}
	if len(p.defaultTags) == 0 {
		p.defaultTags = []string{"AI", "Technology", "Video"}
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Platform() string {
	return platform
}

// Publish posts the upload payload to the webhook. The automation's JSON
// reply, if any, is passed through on the result.
func (p *Publisher) Publish(ctx context.Context, v distribution.Video) (*distribution.Result, error) {
	if p.url == "" {
		return nil, fmt.Errorf("webhook: %w: set YOUTUBE_WEBHOOK_URL", distribution.ErrNotConfigured)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := httputil.NewJSONRequest(ctx, http.MethodPost, p.url, p.payload(v))
	if err != nil {
		return nil, err
	}

	slog.Info("Sending video to publish webhook", "title", v.Title, "path", v.Path)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	result := &distribution.Result{Status: "submitted", Platform: platform}
	if len(body) == 0 {
		return result, nil
	}

	var reply map[string]any
	if err := json.Unmarshal(body, &reply); err != nil {
		slog.Debug("Webhook reply is not JSON", "body", string(body))
		return result, nil
	}
	result.Response = reply
	result.ID = firstString(reply, "videoId", "upload_id", "id")
	result.URL = firstString(reply, "url", "videoUrl")
	if s := firstString(reply, "status"); s != "" {
		result.Status = s
	}
	return result, nil
}

func (p *Publisher) payload(v distribution.Video) payload {
	tags := v.Tags
	if len(tags) == 0 {
		tags = p.defaultTags
	}
	category := v.CategoryID
	if category == "" {
		category = p.categoryID
	}
	privacy := v.Privacy
	if privacy == "" {
		privacy = p.privacy
	}

	return payload{
		VideoPath:         v.Path,
		Title:             v.Title,
		Description:       v.Description,
		Tags:              tags,
		CategoryID:        category,
		PrivacyStatus:     privacy,
		ThumbnailPath:     optional(v.ThumbnailPath),
		SchedulePublishAt: optional(v.PublishAt),
		Timestamp:         p.now().UTC().Format(time.RFC3339),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
