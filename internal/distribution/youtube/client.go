package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"omniflow/internal/distribution"
	"omniflow/pkg/config"
)

const (
	platform    = "youtube"
	RedirectURL = "http://localhost:8085/callback"
)

var _ distribution.Publisher = (*Publisher)(nil)

type Publisher struct {
	auth        *Auth
	categoryID  string
	privacy     string
	serviceOpts []option.ClientOption
}

type Auth struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenPath string
}

type publisherOption func(*Publisher)

var scopes = []string{
	youtube.YoutubeUploadScope,
	youtube.YoutubeScope,
}

func NewAuth(clientID, clientSecret, tokenPath string) *Auth {
	return &Auth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
			RedirectURL:  RedirectURL,
		},
		tokenPath: tokenPath,
	}
}

func withServiceOptions(opts ...option.ClientOption) publisherOption {
	return func(p *Publisher) {
		p.serviceOpts = append(p.serviceOpts, opts...)
	}
}

func NewPublisher(auth *Auth, cfg config.PublishConfig) *Publisher {
	return newPublisher(auth, cfg)
}

func newPublisher(auth *Auth, cfg config.PublishConfig, opts ...publisherOption) *Publisher {
	p := &Publisher{
		auth:       auth,
		categoryID: cfg.CategoryID,
		privacy:    cfg.PrivacyStatus,
	}
	if p.categoryID == "" {
		p.categoryID = distribution.DefaultCategoryID
	}
	if p.privacy == "" {
		p.privacy = distribution.DefaultPrivacy
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Platform() string {
	return platform
}

func (p *Publisher) Auth() *Auth {
	return p.auth
}

// Publish uploads the video through the Data API. YouTube only schedules
// private videos, so a PublishAt forces the privacy to private.
func (p *Publisher) Publish(ctx context.Context, v distribution.Video) (*distribution.Result, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	svc, err := p.auth.service(ctx, p.serviceOpts...)
	if err != nil {
		return nil, err
	}

	video := p.video(v)

	f, err := os.Open(v.Path)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = f.Close() }()

	slog.Info("Uploading video to YouTube", "title", v.Title, "privacy", video.Status.PrivacyStatus)

	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(f).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	return &distribution.Result{
		ID:       uploaded.Id,
		URL:      fmt.Sprintf("https://youtube.com/watch?v=%s", uploaded.Id),
		Status:   "uploaded",
		Platform: platform,
	}, nil
}

func (p *Publisher) video(v distribution.Video) *youtube.Video {
	category := v.CategoryID
	if category == "" {
		category = p.categoryID
	}
	status := &youtube.VideoStatus{PrivacyStatus: v.Privacy}
	if status.PrivacyStatus == "" {
		status.PrivacyStatus = p.privacy
	}
	if v.PublishAt != "" {
		status.PrivacyStatus = "private"
		status.PublishAt = v.PublishAt
	}

	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       v.Title,
			Description: v.Description,
			Tags:        v.Tags,
			CategoryId:  category,
		},
		Status: status,
	}
}

func (a *Auth) LoadToken() error {
	data, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("parse token: %w", err)
	}

	a.token = &token
	return nil
}

func (a *Auth) SaveToken() error {
	data, err := json.MarshalIndent(a.token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}

	if err := os.WriteFile(a.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}

	return nil
}

func (a *Auth) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (a *Auth) Exchange(ctx context.Context, code string) error {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	a.token = token
	return a.SaveToken()
}

func (a *Auth) service(ctx context.Context, opts ...option.ClientOption) (*youtube.Service, error) {
	httpClient, err := a.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("get auth client: %w", err)
	}
	svc, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return svc, nil
}

func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	if a.token == nil {
		if err := a.LoadToken(); err != nil {
			return nil, err
		}
	}

	return a.config.Client(ctx, a.token), nil
}

// IsAuthenticated reports whether a token is present. Expired tokens
// still count when they carry a refresh token.
func (a *Auth) IsAuthenticated() bool {
	if a.token == nil {
		if err := a.LoadToken(); err != nil {
			return false
		}
	}
	return a.token.Valid() || a.token.RefreshToken != ""
}

func (a *Auth) TokenPath() string {
	return a.tokenPath
}
