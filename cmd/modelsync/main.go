package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/everstacklabs/modelsync/internal/config"
	"github.com/everstacklabs/modelsync/internal/diff"
	"github.com/everstacklabs/modelsync/internal/pipeline"
	"github.com/everstacklabs/modelsync/internal/validate"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "modelsync",
		Short: "Sync LM Studio models into Copilot settings",
		Long:  "Discovers models from a local LM Studio instance and merges the Copilot custom-models block into VS Code settings, behind a diff preview and a confirmation gate.",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		syncCmd(),
		diffCmd(),
		discoverCmd(),
		validateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(pipeline.ExitError)
	}
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch models and merge them into the settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg)

			path, err := p.TargetPath()
			if err != nil {
				return err
			}
			if path == "" {
				// No target file: print the generated block instead.
				return p.Print(cmd.Context())
			}

			result, err := p.Sync(cmd.Context(), path)
			if err != nil {
				return err
			}

			switch result.Decision {
			case diff.Unchanged:
				fmt.Println("No changes detected.")
			case diff.Cancel:
				fmt.Println("Operation cancelled; settings left untouched.")
				os.Exit(pipeline.ExitCancelled)
			case diff.Apply:
				if result.BackupPath != "" {
					fmt.Printf("Created backup at %s\n", result.BackupPath)
				}
				fmt.Printf("Updated %s with %d models\n", result.Path, len(result.Models))
			}

			return nil
		},
	}

	addTargetFlags(cmd)
	cmd.Flags().Bool("yes", false, "Apply changes without asking")

	return cmd
}

func diffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show what would change (no writes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg)

			path, err := p.TargetPath()
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("diff needs --editor or --settings-path")
			}

			result, err := p.Preview(cmd.Context(), path)
			if err != nil {
				return err
			}

			if result.ChangeSet.HasChanges() {
				os.Exit(pipeline.ExitChanges)
			}
			return nil
		},
	}

	addTargetFlags(cmd)

	return cmd
}

func discoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discovery only, print models to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg)

			models, err := p.Discover(cmd.Context())
			if err != nil {
				return err
			}

			for _, m := range models {
				fmt.Printf("%-50s %-10s %8d  %s\n", m.ID, m.Type, m.MaxContextLength, strings.Join(m.Capabilities, ","))
			}

			fmt.Printf("\nTotal: %d models\n", len(models))
			return nil
		},
	}

	cmd.Flags().String("studio-url", "", "LM Studio URL to fetch models from")

	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the managed block in an existing settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg)

			path, err := p.TargetPath()
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("validate needs --editor or --settings-path")
			}

			result, err := pipeline.ValidateFile(path, cfg.ManagedKey)
			if err != nil {
				return err
			}

			fmt.Println(validate.FormatResult(result))
			if result.HasErrors() {
				os.Exit(pipeline.ExitError)
			}
			return nil
		},
	}

	addTargetFlags(cmd)

	return cmd
}

// addTargetFlags registers the flags shared by commands that resolve a
// settings file and a discovery endpoint.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", "", "Base URL written into the config (where Copilot connects)")
	cmd.Flags().String("studio-url", "", "LM Studio URL to fetch models from (default: base-url with port 1234)")
	cmd.Flags().String("editor", "", "Resolve the settings path for an editor (code or code-insiders)")
	cmd.Flags().String("settings-path", "", "Path to the settings.json file")
	cmd.MarkFlagsMutuallyExclusive("editor", "settings-path")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cmd, cfg)
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// applyFlags lets command-line flags override file and environment values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("studio-url") {
		cfg.StudioURL, _ = flags.GetString("studio-url")
	}
	if flags.Changed("editor") {
		cfg.Editor, _ = flags.GetString("editor")
		cfg.SettingsPath = ""
	}
	if flags.Changed("settings-path") {
		cfg.SettingsPath, _ = flags.GetString("settings-path")
		cfg.Editor = ""
	}
	if flags.Changed("yes") {
		cfg.AssumeYes, _ = flags.GetBool("yes")
	}
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetLogLoggerLevel(l)
}
