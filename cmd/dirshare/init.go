package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file interactively",
	Long: `Create a config.yaml by answering a few prompts.

The generated file covers the served directory, listening address,
uploads, and TLS. Defaults match what the server uses when no config
file exists, so you only need this when you want settings to persist.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("output", "o", "config.yaml", "path of the config file to write")
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")

	rootCmd.AddCommand(initCmd)
}

// fileConfig mirrors the config keys the server reads; kept separate
// from config.Config so the written YAML stays stable and minimal.
type fileConfig struct {
	Server struct {
		Bind string `yaml:"bind"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Directory string `yaml:"directory"`
	} `yaml:"storage"`
	Uploads struct {
		Enabled     bool  `yaml:"enabled"`
		MaxBodySize int64 `yaml:"max_body_size"`
	} `yaml:"uploads"`
	TLS struct {
		Enabled bool   `yaml:"enabled"`
		Cert    string `yaml:"cert"`
		Key     string `yaml:"key"`
	} `yaml:"tls"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func runInit(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", output)
		}
	}

	var cfg fileConfig

	dirPrompt := promptui.Prompt{
		Label:   "Directory to serve",
		Default: ".",
		Validate: func(input string) error {
			info, statErr := os.Stat(input)
			if statErr != nil || !info.IsDir() {
				return errors.New("must be an existing directory")
			}
			return nil
		},
	}
	dir, err := dirPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Storage.Directory = dir

	bindPrompt := promptui.Prompt{
		Label:   "Address to bind to (empty for all interfaces)",
		Default: "",
	}
	bind, err := bindPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Server.Bind = bind

	portPrompt := promptui.Prompt{
		Label:   "Port",
		Default: "8000",
		Validate: func(input string) error {
			p, convErr := strconv.Atoi(input)
			if convErr != nil || p < 1 || p > 65535 {
				return errors.New("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	uploadsPrompt := promptui.Prompt{
		Label:     "Enable file uploads",
		IsConfirm: true,
	}
	if _, promptErr := uploadsPrompt.Run(); promptErr == nil {
		cfg.Uploads.Enabled = true
	}

	tlsPrompt := promptui.Prompt{
		Label:     "Enable HTTPS",
		IsConfirm: true,
	}
	cfg.TLS.Cert = "server.crt"
	cfg.TLS.Key = "server.key"
	if _, promptErr := tlsPrompt.Run(); promptErr == nil {
		cfg.TLS.Enabled = true

		certPrompt := promptui.Prompt{Label: "Certificate file", Default: "server.crt"}
		cert, certErr := certPrompt.Run()
		if certErr != nil {
			return handlePromptError(certErr)
		}
		cfg.TLS.Cert = cert

		keyPrompt := promptui.Prompt{Label: "Key file", Default: "server.key"}
		key, keyErr := keyPrompt.Run()
		if keyErr != nil {
			return handlePromptError(keyErr)
		}
		cfg.TLS.Key = key
	}

	cfg.Log.Level = "info"

	if err := writeConfig(&cfg, output); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", output)
	return nil
}

// writeConfig marshals the config to YAML and writes it to path.
func writeConfig(cfg *fileConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
