package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath      = "config.yaml"
	defaultComfyURL        = "http://localhost:8188"
	defaultComfyClientID   = "omniflow"
	defaultComfyCheckpoint = "sd-v1-5-pruned-emaonly.safetensors"
	defaultComfyQuality    = "1080p"
	defaultComfyPoll       = 2 * time.Second
	defaultComfyTimeout    = 600 * time.Second
	defaultElevenLabsURL   = "https://api.elevenlabs.io/v1"
	defaultElevenLabsVoice = "21m00Tcm4TlvDq8ikWAM"
	defaultElevenLabsModel = "eleven_monolingual_v1"
	defaultStability       = 0.5
	defaultSimilarity      = 0.75
	defaultLLMModel        = "llama-3.3-70b-versatile"
	defaultFFmpegPath      = "ffmpeg"
	defaultFPS             = 24
	defaultOutputDir       = "projects"
	defaultDuration        = 600
	defaultAutomationsDir  = "automations"
	defaultWorkflowsDir    = "workflows"
	defaultCategoryID      = "28"
	defaultPrivacyStatus   = "public"
	defaultPublishTimeout  = 30 * time.Second
	defaultPublishMethod   = "webhook"
	defaultTokenPath       = "./youtube_token.json"
	defaultStoragePrefix   = "projects"
	defaultServerAddr      = ":8080"
	defaultServerTimeout   = 15 * time.Minute
)

var ErrMissingFile = errors.New("config file not found")

type Config struct {
	ElevenLabsAPIKeys   []string
	GroqAPIKey          string
	YouTubeWebhookURL   string
	YouTubeAPIKey       string
	YouTubeClientID     string
	YouTubeClientSecret string
	GCPProject          string

	ComfyUI    ComfyUIConfig    `yaml:"comfyui"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	LLM        LLMConfig        `yaml:"llm"`
	Video      VideoConfig      `yaml:"video"`
	Production ProductionConfig `yaml:"production"`
	Publish    PublishConfig    `yaml:"publish"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Secrets    SecretsConfig    `yaml:"secrets"`
}

type ComfyUIConfig struct {
	URL          string        `yaml:"url"`
	ClientID     string        `yaml:"client_id"`
	Checkpoint   string        `yaml:"checkpoint"`
	Quality      string        `yaml:"quality"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
	WorkflowsDir string        `yaml:"workflows_dir"`
}

type ElevenLabsConfig struct {
	// Enabled is an opt-out; unset means on whenever a key is present.
	Enabled    *bool   `yaml:"enabled"`
	BaseURL    string  `yaml:"base_url"`
	VoiceID    string  `yaml:"voice_id"`
	Model      string  `yaml:"model"`
	Stability  float64 `yaml:"stability"`
	Similarity float64 `yaml:"similarity"`
}

type LLMConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type VideoConfig struct {
	FFmpegPath string `yaml:"ffmpeg_path"`
	FPS        int    `yaml:"fps"`
}

type ProductionConfig struct {
	OutputDir      string `yaml:"output_dir"`
	Duration       int    `yaml:"duration"`
	Enhance        bool   `yaml:"enhance"`
	AutomationsDir string `yaml:"automations_dir"`
}

type PublishConfig struct {
	Method        string        `yaml:"method"` // "webhook" or "youtube"
	Enabled       bool          `yaml:"enabled"`
	CategoryID    string        `yaml:"category_id"`
	PrivacyStatus string        `yaml:"privacy_status"`
	Timeout       time.Duration `yaml:"timeout"`
	Niche         string        `yaml:"niche"`
}

type YouTubeConfig struct {
	TokenPath   string   `yaml:"token_path"`
	DefaultTags []string `yaml:"default_tags"`
}

type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bucket  string `yaml:"bucket"`
	Prefix  string `yaml:"prefix"`
}

type ServerConfig struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

type SecretsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads .env, the environment and config.yaml from the working
// directory. A missing config.yaml is tolerated.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := LoadFile(ctx, defaultConfigPath)
	if errors.Is(err, ErrMissingFile) {
		slog.Warn("No config.yaml found, using defaults")
		cfg = fromEnv()
		applyDefaults(cfg)
		if err := resolveSecrets(ctx, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

func LoadFile(ctx context.Context, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := fromEnv()
	if err := loadYAMLConfig(cfg, path); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := resolveSecrets(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		ElevenLabsAPIKeys:   elevenLabsKeys(),
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		YouTubeWebhookURL:   os.Getenv("YOUTUBE_WEBHOOK_URL"),
		YouTubeAPIKey:       os.Getenv("YOUTUBE_API_KEY"),
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		GCPProject:          os.Getenv("GOOGLE_CLOUD_PROJECT"),
		ComfyUI:             ComfyUIConfig{URL: os.Getenv("COMFYUI_URL")},
	}
}

func elevenLabsKeys() []string {
	if keys := os.Getenv("ELEVENLABS_API_KEYS"); keys != "" {
		return splitKeys(keys)
	}
	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		return []string{key}
	}
	return nil
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyComfyUIDefaults(cfg)
	applyElevenLabsDefaults(cfg)
	applyLLMDefaults(cfg)
	applyVideoDefaults(cfg)
	applyProductionDefaults(cfg)
	applyPublishDefaults(cfg)
	applyYouTubeDefaults(cfg)
	applyStorageDefaults(cfg)
	applyServerDefaults(cfg)
}

func applyComfyUIDefaults(cfg *Config) {
	if cfg.ComfyUI.URL == "" {
		cfg.ComfyUI.URL = defaultComfyURL
	}
	cfg.ComfyUI.URL = strings.TrimRight(cfg.ComfyUI.URL, "/")
	if cfg.ComfyUI.ClientID == "" {
		cfg.ComfyUI.ClientID = defaultComfyClientID
	}
	if cfg.ComfyUI.Checkpoint == "" {
		cfg.ComfyUI.Checkpoint = defaultComfyCheckpoint
	}
	if cfg.ComfyUI.Quality == "" {
		cfg.ComfyUI.Quality = defaultComfyQuality
	}
	if cfg.ComfyUI.PollInterval == 0 {
		cfg.ComfyUI.PollInterval = defaultComfyPoll
	}
	if cfg.ComfyUI.Timeout == 0 {
		cfg.ComfyUI.Timeout = defaultComfyTimeout
	}
	if cfg.ComfyUI.WorkflowsDir == "" {
		cfg.ComfyUI.WorkflowsDir = defaultWorkflowsDir
	}
}

// ElevenLabsEnabled reports whether narration should use ElevenLabs.
func (c *Config) ElevenLabsEnabled() bool {
	if len(c.ElevenLabsAPIKeys) == 0 {
		return false
	}
	return c.ElevenLabs.Enabled == nil || *c.ElevenLabs.Enabled
}

func applyElevenLabsDefaults(cfg *Config) {
	if cfg.ElevenLabs.BaseURL == "" {
		cfg.ElevenLabs.BaseURL = defaultElevenLabsURL
	}
	if cfg.ElevenLabs.VoiceID == "" {
		cfg.ElevenLabs.VoiceID = defaultElevenLabsVoice
	}
	if cfg.ElevenLabs.Model == "" {
		cfg.ElevenLabs.Model = defaultElevenLabsModel
	}
	if cfg.ElevenLabs.Stability == 0 {
		cfg.ElevenLabs.Stability = defaultStability
	}
	if cfg.ElevenLabs.Similarity == 0 {
		cfg.ElevenLabs.Similarity = defaultSimilarity
	}
}

func applyLLMDefaults(cfg *Config) {
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultLLMModel
	}
}

func applyVideoDefaults(cfg *Config) {
	if cfg.Video.FFmpegPath == "" {
		cfg.Video.FFmpegPath = defaultFFmpegPath
	}
	if cfg.Video.FPS == 0 {
		cfg.Video.FPS = defaultFPS
	}
}

func applyProductionDefaults(cfg *Config) {
	if cfg.Production.OutputDir == "" {
		cfg.Production.OutputDir = defaultOutputDir
	}
	if cfg.Production.Duration == 0 {
		cfg.Production.Duration = defaultDuration
	}
	if cfg.Production.AutomationsDir == "" {
		cfg.Production.AutomationsDir = defaultAutomationsDir
	}
}

func applyPublishDefaults(cfg *Config) {
	if cfg.Publish.Method == "" {
		cfg.Publish.Method = defaultPublishMethod
	}
	if cfg.Publish.CategoryID == "" {
		cfg.Publish.CategoryID = defaultCategoryID
	}
	if cfg.Publish.PrivacyStatus == "" {
		cfg.Publish.PrivacyStatus = defaultPrivacyStatus
	}
	if cfg.Publish.Timeout == 0 {
		cfg.Publish.Timeout = defaultPublishTimeout
	}
	if cfg.Publish.Niche == "" {
		cfg.Publish.Niche = "technology"
	}
}

func applyYouTubeDefaults(cfg *Config) {
	if cfg.YouTube.TokenPath == "" {
		cfg.YouTube.TokenPath = getEnvOrDefault("YOUTUBE_TOKEN_PATH", defaultTokenPath)
	}
	if len(cfg.YouTube.DefaultTags) == 0 {
		cfg.YouTube.DefaultTags = []string{"AI", "Technology", "Video"}
	}
}

func applyStorageDefaults(cfg *Config) {
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = os.Getenv("GCS_BUCKET")
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = defaultStoragePrefix
	}
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = getEnvOrDefault("OMNIFLOW_ADDR", defaultServerAddr)
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = defaultServerTimeout
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
