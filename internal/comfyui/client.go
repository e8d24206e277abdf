package comfyui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"omniflow/pkg/config"
	"omniflow/pkg/httputil"
)

const (
	defaultHTTPTimeout   = 60 * time.Second
	defaultBatchLimit    = 2
	defaultDownloadLimit = 4
)

var ErrTimeout = errors.New("comfyui: timed out waiting for outputs")

type Client struct {
	baseURL      string
	clientID     string
	checkpoint   string
	quality      string
	pollInterval time.Duration
	timeout      time.Duration
	httpClient   httputil.Doer
}

type Option func(*Client)

func WithHTTPClient(d httputil.Doer) Option {
	return func(c *Client) { c.httpClient = d }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

func NewClient(cfg config.ComfyUIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:      cfg.URL,
		clientID:     cfg.ClientID,
		checkpoint:   cfg.Checkpoint,
		quality:      cfg.Quality,
		pollInterval: cfg.PollInterval,
		timeout:      cfg.Timeout,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: defaultHTTPTimeout},
			httputil.DefaultRetryConfig(),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 2 * time.Second
	}
	return c
}

// ImageRef points at a file in the server's output directory.
type ImageRef struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

type Result struct {
	PromptID string     `json:"prompt_id"`
	Images   []ImageRef `json:"images"`
}

type submitRequest struct {
	Prompt   Workflow `json:"prompt"`
	ClientID string   `json:"client_id"`
}

type submitResponse struct {
	PromptID   string         `json:"prompt_id"`
	Number     int            `json:"number"`
	NodeErrors map[string]any `json:"node_errors"`
}

type historyEntry struct {
	Outputs map[string]struct {
		Images []ImageRef `json:"images"`
		Gifs   []ImageRef `json:"gifs"`
	} `json:"outputs"`
	Status struct {
		StatusStr string `json:"status_str"`
		Completed bool   `json:"completed"`
	} `json:"status"`
}

// Submit queues wf and returns its prompt ID.
func (c *Client) Submit(ctx context.Context, wf Workflow) (string, error) {
	req, err := httputil.NewJSONRequest(ctx, http.MethodPost, c.baseURL+"/api/prompt", submitRequest{
		Prompt:   wf,
		ClientID: c.clientID,
	})
	if err != nil {
		return "", err
	}

	var out submitResponse
	if err := httputil.DoJSON(c.httpClient, req, &out); err != nil {
		return "", fmt.Errorf("submit workflow: %w", err)
	}
	if out.PromptID == "" {
		return "", fmt.Errorf("submit workflow: no prompt_id (node errors: %v)", out.NodeErrors)
	}

	slog.Debug("Workflow queued", "prompt_id", out.PromptID, "position", out.Number)
	return out.PromptID, nil
}

// Wait polls the history endpoint until the prompt has outputs or the
// configured timeout expires.
func (c *Client) Wait(ctx context.Context, promptID string) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		res, done, err := c.history(ctx, promptID)
		if err != nil {
			return nil, err
		}
		if done {
			return res, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: prompt %s", ErrTimeout, promptID)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) history(ctx context.Context, promptID string) (*Result, bool, error) {
	req, err := httputil.NewJSONRequest(ctx, http.MethodGet, c.baseURL+"/history/"+url.PathEscape(promptID), nil)
	if err != nil {
		return nil, false, err
	}

	var hist map[string]historyEntry
	if err := httputil.DoJSON(c.httpClient, req, &hist); err != nil {
		if ctx.Err() != nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch history: %w", err)
	}

	entry, ok := hist[promptID]
	if !ok {
		return nil, false, nil
	}
	if entry.Status.StatusStr == "error" {
		return nil, false, fmt.Errorf("prompt %s failed on server", promptID)
	}
	if len(entry.Outputs) == 0 {
		return nil, false, nil
	}

	res := &Result{PromptID: promptID}
	// save node first so frames keep their graph order
	if out, ok := entry.Outputs[saveNode]; ok {
		res.Images = append(res.Images, out.Images...)
	}
	for id, out := range entry.Outputs {
		if id != saveNode {
			res.Images = append(res.Images, out.Images...)
		}
		// video nodes report their files under "gifs"
		res.Images = append(res.Images, out.Gifs...)
	}
	return res, true, nil
}

// Images downloads every output image of res concurrently, keeping the
// order of res.Images.
func (c *Client) Images(ctx context.Context, res *Result) ([][]byte, error) {
	images := make([][]byte, len(res.Images))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultDownloadLimit)
	for i, ref := range res.Images {
		g.Go(func() error {
			data, err := c.download(ctx, ref)
			if err != nil {
				return err
			}
			images[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *Client) download(ctx context.Context, ref ImageRef) ([]byte, error) {
	q := url.Values{}
	q.Set("filename", ref.Filename)
	q.Set("subfolder", ref.Subfolder)
	q.Set("type", ref.Type)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/view?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", ref.Filename, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("download %s: %w", ref.Filename, err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref.Filename, err)
	}
	return data, nil
}

// Generate runs a text-to-image workflow for prompt and returns the
// encoded images. Empty options take the client's checkpoint and quality.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) ([][]byte, error) {
	opts.Positive = prompt
	if opts.Checkpoint == "" {
		opts.Checkpoint = c.checkpoint
	}
	if opts.Quality == "" {
		opts.Quality = c.quality
	}
	if opts.Negative == "" {
		opts.Negative = "low quality, blurry"
	}

	res, err := c.Run(ctx, NewWorkflow(opts))
	if err != nil {
		return nil, err
	}
	return c.Images(ctx, res)
}

// Run submits wf and waits for its outputs.
func (c *Client) Run(ctx context.Context, wf Workflow) (*Result, error) {
	id, err := c.Submit(ctx, wf)
	if err != nil {
		return nil, err
	}
	return c.Wait(ctx, id)
}

// Batch runs workflows concurrently, at most limit at a time. Results
// are returned in input order; the first failure cancels the rest.
func (c *Client) Batch(ctx context.Context, workflows []Workflow, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	results := make([]*Result, len(workflows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, wf := range workflows {
		g.Go(func() error {
			res, err := c.Run(ctx, wf)
			if err != nil {
				return fmt.Errorf("workflow %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Health reports whether the server answers on its root page.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("comfyui unreachable at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	return httputil.CheckStatus(resp)
}

func (c *Client) SystemInfo(ctx context.Context) (map[string]any, error) {
	req, err := httputil.NewJSONRequest(ctx, http.MethodGet, c.baseURL+"/api/systeminfo", nil)
	if err != nil {
		return nil, err
	}
	var info map[string]any
	if err := httputil.DoJSON(c.httpClient, req, &info); err != nil {
		return nil, fmt.Errorf("system info: %w", err)
	}
	return info, nil
}
