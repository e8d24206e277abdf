package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"omniflow/internal/speech"
	"omniflow/pkg/config"
	"omniflow/pkg/httputil"
)

const timeout = 120 * time.Second

var _ speech.Provider = (*Client)(nil)

type Client struct {
	apiKeys    []string
	keyIndex   uint64
	httpClient httputil.Doer
	baseURL    string
	defaults   speech.Settings
}

type option func(*Client)

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type voicesResponse struct {
	Voices []struct {
		VoiceID     string            `json:"voice_id"`
		Name        string            `json:"name"`
		Category    string            `json:"category"`
		Description string            `json:"description"`
		Labels      map[string]string `json:"labels"`
	} `json:"voices"`
}

func withBaseURL(url string) option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func withHTTPClient(client httputil.Doer) option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient builds an ElevenLabs provider. Requests rotate over apiKeys
// and fall through to the next key when one runs out of quota.
func NewClient(apiKeys []string, cfg config.ElevenLabsConfig) *Client {
	return newClient(apiKeys, cfg)
}

func newClient(apiKeys []string, cfg config.ElevenLabsConfig, opts ...option) *Client {
	keys := apiKeys
	if len(keys) == 0 {
		keys = []string{""}
	}

	c := &Client{
		apiKeys:    keys,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		defaults: speech.Settings{
			VoiceID:    cfg.VoiceID,
			Model:      cfg.Model,
			Stability:  cfg.Stability,
			Similarity: cfg.Similarity,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Synthesize(ctx context.Context, text string, s speech.Settings) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("synthesize: empty text")
	}
	s = s.Merge(c.defaults)
	if s.VoiceID == "" {
		return nil, fmt.Errorf("synthesize: no voice configured")
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, s.VoiceID)
	body := synthesizeRequest{
		Text:    text,
		ModelID: s.Model,
		VoiceSettings: voiceSettings{
			Stability:       s.Stability,
			SimilarityBoost: s.Similarity,
		},
	}

	var err error
	for i, key := range c.rotation() {
		if i > 0 {
			slog.Warn("ElevenLabs key out of quota, trying next key", "attempt", i+1)
		}
		var audio []byte
		if audio, err = c.synthesizeWithKey(ctx, url, body, key); err == nil {
			return audio, nil
		}
		if !isQuotaError(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("all API keys exhausted: %w", err)
}

func (c *Client) synthesizeWithKey(ctx context.Context, url string, body synthesizeRequest, apiKey string) ([]byte, error) {
	req, err := httputil.NewJSONRequest(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty response from elevenlabs api")
	}
	return audio, nil
}

func (c *Client) Voices(ctx context.Context) ([]speech.Voice, error) {
	req, err := httputil.NewJSONRequest(ctx, http.MethodGet, c.baseURL+"/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.nextAPIKey())

	var out voicesResponse
	if err := httputil.DoJSON(c.httpClient, req, &out); err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}

	voices := make([]speech.Voice, 0, len(out.Voices))
	for _, v := range out.Voices {
		desc := v.Description
		if desc == "" {
			desc = v.Labels["description"]
		}
		voices = append(voices, speech.Voice{
			ID:          v.VoiceID,
			Name:        v.Name,
			Category:    v.Category,
			Description: desc,
		})
	}
	return voices, nil
}

// rotation returns every key once, starting after the last key handed out.
func (c *Client) rotation() []string {
	n := uint64(len(c.apiKeys))
	start := atomic.AddUint64(&c.keyIndex, 1)
	keys := make([]string, n)
	for i := range n {
		keys[i] = c.apiKeys[(start+i)%n]
	}
	return keys
}

func (c *Client) nextAPIKey() string {
	return c.rotation()[0]
}

func isQuotaError(err error) bool {
	var se *httputil.StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusTooManyRequests ||
		strings.Contains(se.Body, "quota_exceeded") ||
		strings.Contains(se.Body, "rate_limit")
}
