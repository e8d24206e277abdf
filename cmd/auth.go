package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"omniflow/internal/comfyui"
	"omniflow/internal/distribution/youtube"
	"omniflow/pkg/config"
)

const (
	callbackAddr  = ":8085"
	authTimeout   = 5 * time.Minute
	healthTimeout = 5 * time.Second
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with external services",
	Long:  `Authenticate with YouTube or check which services are configured in .env`,
}

var authYouTubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Authenticate with YouTube (OAuth)",
	Long:  `Complete the YouTube OAuth flow using YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET.`,
	RunE:  runAuthYouTube,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check configuration status for all services",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authYouTubeCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

type checkState int

const (
	checkOK checkState = iota
	checkOff
	checkWarn
	checkFail
)

type serviceCheck struct {
	name   string
	state  checkState
	detail string
	hint   string
}

func (c serviceCheck) render() string {
	line := c.name + ": " + c.detail
	switch c.state {
	case checkOK:
		line = successStyle.Render("✓ " + line)
	case checkWarn:
		line = warnStyle.Render("○ " + line)
	case checkFail:
		line = errorStyle.Render("✗ " + line)
	default:
		line = infoStyle.Render("○ " + line)
	}
	if c.hint != "" {
		line += "\n" + infoStyle.Render("  "+c.hint)
	}
	return line
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("\nService Status\n"))
	for _, check := range serviceChecks(ctx, cfg) {
		fmt.Println(check.render())
	}
	fmt.Println()
	return nil
}

func serviceChecks(ctx context.Context, cfg *config.Config) []serviceCheck {
	checks := []serviceCheck{{name: "Groq", state: checkOK, detail: "API key configured"}}
	if cfg.GroqAPIKey == "" {
		checks[0] = serviceCheck{name: "Groq", state: checkWarn, detail: "missing GROQ_API_KEY, enhancement disabled"}
	}

	eleven := serviceCheck{name: "ElevenLabs", state: checkFail, detail: "missing ELEVENLABS_API_KEY, narration is silent"}
	if n := len(cfg.ElevenLabsAPIKeys); n > 0 {
		eleven.state, eleven.detail = checkOK, fmt.Sprintf("%d API key(s) configured", n)
		if !cfg.ElevenLabsEnabled() {
			eleven.state, eleven.detail = checkWarn, "keys configured but disabled by elevenlabs.enabled: false"
		}
	}
	checks = append(checks, eleven)

	webhook := serviceCheck{name: "Webhook", state: checkOff, detail: "not configured"}
	if cfg.YouTubeWebhookURL != "" {
		webhook.state, webhook.detail = checkOK, "YOUTUBE_WEBHOOK_URL configured"
	}
	checks = append(checks, webhook)

	yt := serviceCheck{name: "YouTube OAuth", state: checkOff, detail: "not configured (optional)"}
	if cfg.YouTubeClientID != "" && cfg.YouTubeClientSecret != "" {
		auth := youtube.NewAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTube.TokenPath)
		yt.state, yt.detail = checkOK, "authenticated"
		if !auth.IsAuthenticated() {
			yt.state, yt.detail, yt.hint = checkFail, "credentials set, but not authenticated", "Run: omniflow auth youtube"
		}
	}
	checks = append(checks, yt, serviceCheck{name: "Publish method", state: checkOff, detail: cfg.Publish.Method})

	healthCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	comfy := serviceCheck{name: "ComfyUI", state: checkOK, detail: "reachable at " + cfg.ComfyUI.URL}
	if err := comfyui.NewClient(cfg.ComfyUI).Health(healthCtx); err != nil {
		comfy.state, comfy.detail = checkFail, err.Error()
	}
	checks = append(checks, comfy)

	store := serviceCheck{name: "Storage", state: checkOff, detail: "archiving disabled (optional)"}
	if cfg.Storage.Enabled && cfg.Storage.Bucket != "" {
		store.state, store.detail = checkOK, "archiving to "+cfg.Storage.Bucket
	}
	secrets := serviceCheck{name: "Secret Manager", state: checkOff, detail: "disabled (optional)"}
	if cfg.Secrets.Enabled && cfg.GCPProject != "" {
		secrets.state, secrets.detail = checkOK, "project "+cfg.GCPProject
	}
	return append(checks, store, secrets)
}

func runAuthYouTube(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	if cfg.YouTubeClientID == "" || cfg.YouTubeClientSecret == "" {
		return errors.New("YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET must be set in .env")
	}

	auth := youtube.NewAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTube.TokenPath)
	return runYouTubeAuth(ctx, auth)
}

func runYouTubeAuth(ctx context.Context, auth *youtube.Auth) error {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	listener, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}

	state := uuid.NewString()
	codes := make(chan string, 1)
	errs := make(chan error, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, codes, errs),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			trySend(errs, err)
		}
	}()
	defer func() {
		stopCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer stop()
		_ = srv.Shutdown(stopCtx)
	}()

	url := auth.AuthURL(state)
	fmt.Println(infoStyle.Render("\nOpening the browser for YouTube sign-in. If nothing opens, visit:\n" + url))
	if err := browser.OpenURL(url); err != nil {
		slog.Debug("Could not open browser", "error", err)
	}
	fmt.Println(infoStyle.Render("\nWaiting for the OAuth callback..."))

	select {
	case code := <-codes:
		if err := auth.Exchange(ctx, code); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ YouTube authentication complete, token saved to " + auth.TokenPath()))
		return nil
	case err := <-errs:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("authentication timed out after %s", authTimeout)
		}
		return ctx.Err()
	}
}

func callbackHandler(state string, codes chan<- string, errs chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var err error
		switch {
		case q.Get("state") != state:
			err = errors.New("oauth state mismatch")
		case q.Get("error") != "":
			err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			err = errors.New("no code in callback")
		}
		if err != nil {
			trySend(errs, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		trySend(codes, q.Get("code"))
		_, _ = fmt.Fprint(w, "<html><body><h1>Signed in</h1><p>Return to the terminal to continue.</p></body></html>")
	})
	return mux
}

// trySend drops v when ch is full; only the first callback matters.
func trySend[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(ctx, configPath)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
