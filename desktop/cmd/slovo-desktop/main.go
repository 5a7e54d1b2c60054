package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/slovo/slovo/desktop/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	autostart  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "slovo-desktop",
		Short: "Slovo desktop shell: agent supervision and the webview bridge",
		Long: `slovo-desktop supervises the local Slovo agent (http://127.0.0.1:8741)
and serves the loopback bridge the webview talks to.

Run the shell:           slovo-desktop [--autostart]
Query the agent once:    slovo-desktop status
Send one chat message:   slovo-desktop chat "hello" [--conversation ID]`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&flags.configPath, "config", "config.yaml",
		"path to config file (defaults are used when it does not exist)")
	root.Flags().BoolVar(&flags.autostart, "autostart", false,
		"launched at login: start with the main window hidden")

	root.AddCommand(newStatusCmd(flags, stdout, stderr))
	root.AddCommand(newChatCmd(flags, stdout, stderr))

	return root
}

// loadConfig reads path, falling back to defaults when the file is absent.
// The boolean reports whether the file exists and can be watched.
func loadConfig(path string) (*config.Config, bool, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
