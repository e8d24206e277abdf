package cmd

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"omniflow/internal/distribution/youtube"
	"omniflow/pkg/config"
)

const envFile = ".env"

const (
	publishWebhook = "webhook"
	publishYouTube = "youtube"
	publishNone    = "none"
)

var gcpServices = []string{
	"youtube.googleapis.com",
	"secretmanager.googleapis.com",
	"storage.googleapis.com",
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for OmniFlow",
	Long:  `Check ffmpeg, create working directories and write API keys to .env.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// answers holds the setup form's fields, seeded from the current .env.
type answers struct {
	groqKey       string
	elevenKeys    string
	comfyURL      string
	publish       string
	webhookURL    string
	clientID      string
	clientSecret  string
	authenticate  bool
	useGCP        bool
	gcpProject    string
	bucket        string
	enableService bool
}

func answersFrom(env map[string]string) *answers {
	a := &answers{
		groqKey:      env["GROQ_API_KEY"],
		elevenKeys:   cmp.Or(env["ELEVENLABS_API_KEYS"], env["ELEVENLABS_API_KEY"]),
		comfyURL:     env["COMFYUI_URL"],
		webhookURL:   env["YOUTUBE_WEBHOOK_URL"],
		clientID:     env["YOUTUBE_CLIENT_ID"],
		clientSecret: env["YOUTUBE_CLIENT_SECRET"],
		gcpProject:   env["GOOGLE_CLOUD_PROJECT"],
		bucket:       env["GCS_BUCKET"],
		publish:      publishNone,
	}
	switch {
	case a.webhookURL != "":
		a.publish = publishWebhook
	case a.clientID != "":
		a.publish = publishYouTube
	}
	a.useGCP = a.gcpProject != ""
	return a
}

func (a *answers) apply(env map[string]string) {
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			env[key] = value
		} else {
			delete(env, key)
		}
	}
	set("GROQ_API_KEY", a.groqKey)
	delete(env, "ELEVENLABS_API_KEY")
	delete(env, "ELEVENLABS_API_KEYS")
	if strings.Contains(a.elevenKeys, ",") {
		set("ELEVENLABS_API_KEYS", a.elevenKeys)
	} else {
		set("ELEVENLABS_API_KEY", a.elevenKeys)
	}
	set("COMFYUI_URL", a.comfyURL)

	webhook, clientID, secret := "", "", ""
	switch a.publish {
	case publishWebhook:
		webhook = a.webhookURL
	case publishYouTube:
		clientID, secret = a.clientID, a.clientSecret
	}
	set("YOUTUBE_WEBHOOK_URL", webhook)
	set("YOUTUBE_CLIENT_ID", clientID)
	set("YOUTUBE_CLIENT_SECRET", secret)

	if a.useGCP {
		set("GOOGLE_CLOUD_PROJECT", a.gcpProject)
		set("GCS_BUCKET", a.bucket)
	}
}

func (a *answers) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("API keys").
				Description("Groq writes the scripts, ElevenLabs voices them."),
			huh.NewInput().
				Title("Groq API key").
				Description("https://console.groq.com/keys").
				EchoMode(huh.EchoModePassword).
				Value(&a.groqKey).
				Validate(required("Groq API key")),
			huh.NewInput().
				Title("ElevenLabs API key(s)").
				Description("https://elevenlabs.io/app/settings/api-keys, comma separated for rotation").
				EchoMode(huh.EchoModePassword).
				Value(&a.elevenKeys).
				Validate(required("ElevenLabs API key")),
			huh.NewInput().
				Title("ComfyUI URL").
				Placeholder("http://localhost:8188").
				Value(&a.comfyURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How should videos be published?").
				Options(
					huh.NewOption("n8n / Make webhook", publishWebhook),
					huh.NewOption("YouTube Data API (OAuth)", publishYouTube),
					huh.NewOption("Don't publish", publishNone),
				).
				Value(&a.publish),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Webhook URL").
				Description("Import a template first: omniflow automations").
				Placeholder("https://n8n.example.com/webhook/omniflow").
				Value(&a.webhookURL).
				Validate(required("Webhook URL")),
		).WithHideFunc(func() bool { return a.publish != publishWebhook }),
		huh.NewGroup(
			huh.NewNote().
				Title("OAuth client").
				Description("Create a Desktop app client at\nhttps://console.cloud.google.com/apis/credentials"),
			huh.NewInput().
				Title("Client ID").
				Value(&a.clientID).
				Validate(required("Client ID")),
			huh.NewInput().
				Title("Client secret").
				EchoMode(huh.EchoModePassword).
				Value(&a.clientSecret).
				Validate(required("Client secret")),
			huh.NewConfirm().
				Title("Authenticate with YouTube now?").
				Description("Opens a browser to finish the OAuth flow").
				Value(&a.authenticate),
		).WithHideFunc(func() bool { return a.publish != publishYouTube }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Use Google Cloud?").
				Description("Optional: Secret Manager for keys and a GCS bucket for archiving projects").
				Value(&a.useGCP),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Project ID").
				Value(&a.gcpProject).
				Validate(required("Project ID")),
			huh.NewInput().
				Title("Archive bucket").
				Description("Leave empty to skip archiving").
				Value(&a.bucket),
			huh.NewConfirm().
				Title("Enable the YouTube, Secret Manager and Storage APIs?").
				Value(&a.enableService),
		).WithHideFunc(func() bool { return !a.useGCP }),
	)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("🎬 OmniFlow Setup"))

	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	if err := ensureFFmpeg(); err != nil {
		return fmt.Errorf("check ffmpeg: %w", err)
	}
	for _, dir := range []string{cfg.Production.OutputDir, cfg.Production.AutomationsDir, cfg.ComfyUI.WorkflowsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	fmt.Println(successStyle.Render("✓ Working directories ready"))

	env, err := godotenv.Read(envFile)
	if err != nil {
		env = make(map[string]string)
	}
	a := answersFrom(env)
	if gcloudAvailable() && a.gcpProject == "" {
		a.gcpProject = activeGCPProject()
	}
	if err := a.form().Run(); err != nil {
		return err
	}
	a.apply(env)

	if err := writeEnvFile(env); err != nil {
		return err
	}

	if a.publish == publishYouTube && a.authenticate {
		authenticateYouTube(cmd.Context(), cfg, a)
	}
	if a.useGCP && a.enableService {
		enableServices(a.gcpProject)
	}

	printNextSteps()
	return nil
}

func authenticateYouTube(ctx context.Context, cfg *config.Config, a *answers) {
	auth := youtube.NewAuth(strings.TrimSpace(a.clientID), strings.TrimSpace(a.clientSecret), cfg.YouTube.TokenPath)
	if err := runYouTubeAuth(ctx, auth); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("OAuth flow failed: %v", err)))
		fmt.Println(infoStyle.Render("Retry later with: omniflow auth youtube"))
	}
}

func enableServices(project string) {
	if !gcloudAvailable() {
		fmt.Println(warnStyle.Render("gcloud CLI not found, enable the APIs from the console instead"))
		return
	}
	args := append([]string{"services", "enable", "--project", project}, gcpServices...)
	if err := runWithSpinner("Enabling Google Cloud APIs", func() error {
		return runSetupCmd("gcloud", args...)
	}); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("API enablement failed: %v", err)))
	}
}

func ensureFFmpeg() error {
	if commandExists("ffmpeg") {
		fmt.Println(successStyle.Render("✓ ffmpeg found"))
		return nil
	}

	install, ok := ffmpegInstallCommand()
	if !ok {
		fmt.Println(warnStyle.Render("ffmpeg not found, install it from https://ffmpeg.org"))
		return nil
	}

	var confirmed bool
	if err := huh.NewConfirm().
		Title("ffmpeg not found").
		Description(fmt.Sprintf("Videos cannot be composed without it. Run %q?", strings.Join(install, " "))).
		Value(&confirmed).
		Run(); err != nil {
		return err
	}
	if !confirmed {
		fmt.Println(warnStyle.Render("Skipping ffmpeg, produce will fail until it is installed"))
		return nil
	}
	return runWithSpinner("Installing ffmpeg", func() error {
		return runSetupCmd(install[0], install[1:]...)
	})
}

func ffmpegInstallCommand() ([]string, bool) {
	switch runtime.GOOS {
	case "darwin":
		return []string{"brew", "install", "ffmpeg"}, true
	case "linux":
		return []string{"sudo", "apt-get", "install", "-y", "ffmpeg"}, true
	}
	return nil, false
}

func gcloudAvailable() bool {
	return commandExists("gcloud")
}

func activeGCPProject() string {
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func writeEnvFile(env map[string]string) error {
	if err := godotenv.Write(env, envFile); err != nil {
		return fmt.Errorf("write %s: %w", envFile, err)
	}
	if err := os.Chmod(envFile, 0600); err != nil {
		return fmt.Errorf("chmod %s: %w", envFile, err)
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Wrote %s (%d keys)", envFile, len(env))))
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	for i, step := range []string{
		"Start ComfyUI and check it: omniflow comfy health",
		"Check credentials: omniflow auth status",
		`Produce a video: omniflow produce -t "Your title" "your script"`,
	} {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	c := exec.Command(name, args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	if spinErr := spinner.New().Title(title).Action(func() { err = fn() }).Run(); spinErr != nil {
		return spinErr
	}
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
