package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"omniflow/internal/comfyui"
)

var (
	workflowQuality    string
	workflowDuration   int
	workflowComplexity string
	workflowImage      string
	workflowEmotion    string
	workflowSeconds    int
	workflowStrength   float64
	profileNotes       map[string]string
	generateOutDir     string
)

var comfyCmd = &cobra.Command{
	Use:   "comfy",
	Short: "Work with the ComfyUI image backend",
}

var comfyHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that ComfyUI is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		client := comfyui.NewClient(cfg.ComfyUI)
		if err := client.Health(ctx); err != nil {
			fmt.Println(errorStyle.Render("✗ " + err.Error()))
			return err
		}
		fmt.Println(successStyle.Render("✓ ComfyUI reachable at " + cfg.ComfyUI.URL))

		info, err := client.SystemInfo(ctx)
		if err != nil {
			fmt.Println(warnStyle.Render("  system info unavailable: " + err.Error()))
			return nil
		}
		if sys, ok := info["system"].(map[string]any); ok {
			fmt.Println(infoStyle.Render(fmt.Sprintf("  version %v, python %v", sys["comfyui_version"], sys["python_version"])))
		}
		return nil
	},
}

var comfyWorkflowCmd = &cobra.Command{
	Use:   "workflow <gospel|tech|talking_head|gesture|character> <theme-topic-or-text>",
	Short: "Save a ComfyUI workflow for import",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}

		var wf comfyui.Workflow
		name := args[0] + "_" + args[1]
		switch args[0] {
		case "gospel":
			wf = comfyui.GospelWorkflow(args[1], workflowDuration, workflowQuality)
		case "tech":
			wf = comfyui.TechWorkflow(args[1], workflowComplexity, workflowQuality)
		case comfyui.AvatarTalkingHead, comfyui.AvatarGesture, comfyui.AvatarCharacter:
			wf, err = comfyui.AvatarWorkflow(comfyui.AvatarOptions{
				Kind:           args[0],
				Text:           args[1],
				Emotion:        workflowEmotion,
				ReferenceImage: workflowImage,
				Strength:       workflowStrength,
				Seconds:        workflowSeconds,
				Checkpoint:     cfg.ComfyUI.Checkpoint,
			})
			if err != nil {
				return err
			}
			name = "avatar_" + args[0]
		default:
			return fmt.Errorf("workflow kind must be one of: [gospel tech %s], got %q", strings.Join(comfyui.AvatarKinds, " "), args[0])
		}

		path, err := comfyui.SaveWorkflow(cfg.ComfyUI.WorkflowsDir, name, wf)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ Workflow saved to " + path))
		return nil
	},
}

var comfyProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Keep a real person's look consistent across videos",
}

var comfyProfileCreateCmd = &cobra.Command{
	Use:   "create <id> <reference-image>...",
	Short: "Register reference images for a character",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := loadProfiles(cmd)
		if err != nil {
			return err
		}
		prof, err := profiles.Create(args[0], args[1:], profileNotes)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Profile %s saved with %d reference images", prof.ID, len(prof.ReferenceImages))))
		return nil
	},
}

var comfyProfileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List consistency profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := loadProfiles(cmd)
		if err != nil {
			return err
		}
		ids := profiles.IDs()
		if len(ids) == 0 {
			fmt.Println(infoStyle.Render("No profiles yet. Run: omniflow comfy profile create <id> <image>"))
			return nil
		}
		for _, id := range ids {
			fmt.Println("  " + id)
		}
		return nil
	},
}

var comfyProfileApplyCmd = &cobra.Command{
	Use:   "apply <id> <scene>",
	Short: "Save a workflow that places a profiled character in a new scene",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		profiles, err := comfyui.LoadProfiles(profilesPath(cfg.ComfyUI.WorkflowsDir))
		if err != nil {
			return err
		}
		wf, err := profiles.Apply(args[0], args[1], workflowStrength)
		if err != nil {
			return err
		}
		path, err := comfyui.SaveWorkflow(cfg.ComfyUI.WorkflowsDir, "character_"+args[0], wf)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ Workflow saved to " + path))
		return nil
	},
}

func profilesPath(workflowsDir string) string {
	return filepath.Join(workflowsDir, "profiles.json")
}

func loadProfiles(cmd *cobra.Command) (*comfyui.Profiles, error) {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	return comfyui.LoadProfiles(profilesPath(cfg.ComfyUI.WorkflowsDir))
}

var comfyGenerateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate images for a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		var images [][]byte
		err = runWithSpinner("Generating images", func() error {
			var genErr error
			images, genErr = comfyui.NewClient(cfg.ComfyUI).Generate(ctx, args[0], comfyui.Options{})
			return genErr
		})
		if err != nil {
			return err
		}

		if err := os.MkdirAll(generateOutDir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		for i, img := range images {
			path := filepath.Join(generateOutDir, fmt.Sprintf("image_%04d.png", i))
			if err := os.WriteFile(path, img, 0644); err != nil {
				return fmt.Errorf("save image: %w", err)
			}
			fmt.Println(successStyle.Render("✓ " + path))
		}
		return nil
	},
}

func init() {
	comfyWorkflowCmd.Flags().StringVarP(&workflowQuality, "quality", "q", "1080p", "Quality (1080p, 2K, 4K)")
	comfyWorkflowCmd.Flags().IntVar(&workflowDuration, "duration", 5, "Duration in minutes (gospel)")
	comfyWorkflowCmd.Flags().StringVar(&workflowComplexity, "complexity", "beginner", "Complexity (tech)")
	comfyWorkflowCmd.Flags().StringVar(&workflowImage, "image", "", "Reference image in the ComfyUI input folder (avatars)")
	comfyWorkflowCmd.Flags().StringVar(&workflowEmotion, "emotion", "neutral", "Expression (talking_head, gesture)")
	comfyWorkflowCmd.Flags().IntVar(&workflowSeconds, "seconds", 0, "Animation length in seconds (talking_head, gesture)")
	for _, c := range []*cobra.Command{comfyWorkflowCmd, comfyProfileApplyCmd} {
		c.Flags().Float64Var(&workflowStrength, "strength", comfyui.DefaultConsistency, "Face consistency strength, 0 to 1")
	}
	comfyProfileCreateCmd.Flags().StringToStringVar(&profileNotes, "note", nil, "Style note as key=value, repeatable")
	comfyGenerateCmd.Flags().StringVarP(&generateOutDir, "out", "o", "images", "Output directory")

	comfyCmd.AddCommand(comfyHealthCmd)
	comfyCmd.AddCommand(comfyWorkflowCmd)
	comfyCmd.AddCommand(comfyGenerateCmd)
	comfyProfileCmd.AddCommand(comfyProfileCreateCmd, comfyProfileListCmd, comfyProfileApplyCmd)
	comfyCmd.AddCommand(comfyProfileCmd)
	rootCmd.AddCommand(comfyCmd)
}
