package config

import (
	"context"
	"fmt"
	"log/slog"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretFetcher returns the latest version of a named secret.
type SecretFetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// newSecretFetcher is swapped in tests.
var newSecretFetcher = func(ctx context.Context, project string) (SecretFetcher, func(), error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create secret manager client: %w", err)
	}
	return &gcpSecrets{client: client, project: project}, func() { _ = client.Close() }, nil
}

type gcpSecrets struct {
	client  *secretmanager.Client
	project string
}

func (s *gcpSecrets) Fetch(ctx context.Context, name string) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.project, name),
	})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}
	return string(resp.Payload.Data), nil
}

// resolveSecrets fills API keys left empty by the environment.
func resolveSecrets(ctx context.Context, cfg *Config) error {
	if !cfg.Secrets.Enabled || cfg.GCPProject == "" {
		return nil
	}

	fetcher, closeFn, err := newSecretFetcher(ctx, cfg.GCPProject)
	if err != nil {
		return err
	}
	defer closeFn()

	targets := []struct {
		name string
		dst  *string
	}{
		{"groq-api-key", &cfg.GroqAPIKey},
		{"youtube-webhook-url", &cfg.YouTubeWebhookURL},
		{"youtube-api-key", &cfg.YouTubeAPIKey},
		{"youtube-client-id", &cfg.YouTubeClientID},
		{"youtube-client-secret", &cfg.YouTubeClientSecret},
	}
	for _, t := range targets {
		if *t.dst != "" {
			continue
		}
		v, err := fetcher.Fetch(ctx, t.name)
		if err != nil {
			slog.Debug("Secret not resolved", "name", t.name, "error", err)
			continue
		}
		*t.dst = v
	}

	if len(cfg.ElevenLabsAPIKeys) == 0 {
		if v, err := fetcher.Fetch(ctx, "elevenlabs-api-keys"); err == nil {
			cfg.ElevenLabsAPIKeys = splitKeys(v)
		}
	}
	return nil
}
