package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/slovo/slovo/desktop/internal/agent"
	"github.com/slovo/slovo/desktop/internal/commands"
	"github.com/slovo/slovo/desktop/internal/config"
	"github.com/slovo/slovo/desktop/internal/logging"
	"github.com/slovo/slovo/desktop/internal/transport"
	"github.com/slovo/slovo/desktop/internal/window"
)

// newStatusCmd prints the check_agent_status envelope. It exits 0 even when
// the agent is down; the envelope says "disconnected".
func newStatusCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Query the agent's health once and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := oneShotFacade(flags, stderr)
			if err != nil {
				return err
			}
			return printJSON(stdout, f.CheckAgentStatus(cmd.Context()))
		},
	}
}

// newChatCmd sends one message and prints the send_message_to_agent
// envelope. A failed envelope is printed and also makes the command fail.
func newChatCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var conversation string

	cmd := &cobra.Command{
		Use:   "chat MESSAGE",
		Short: "Send one chat message to the agent and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := oneShotFacade(flags, stderr)
			if err != nil {
				return err
			}
			var convID *string
			if cmd.Flags().Changed("conversation") {
				convID = &conversation
			}
			env := f.SendMessageToAgent(cmd.Context(), args[0], convID)
			if err := printJSON(stdout, env); err != nil {
				return err
			}
			if !env.Success {
				return fmt.Errorf("chat: %s", *env.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&conversation, "conversation", "",
		"continue an existing conversation (id returned by a previous reply)")
	return cmd
}

func oneShotFacade(flags *rootFlags, stderr io.Writer) (*commands.Facade, error) {
	cfg, _, err := loadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	logger, _, err := logging.New(config.LogConfig{Level: "warn", Format: cfg.Log.Format}, stderr)
	if err != nil {
		return nil, err
	}
	client := agent.New(transport.New(cfg.Agent.BaseURL, cfg.Agent.Timeout,
		transport.WithUserAgent(userAgent())))
	return commands.New(client, window.New(nil),
		commands.WithLogger(logger),
		commands.WithHealthyStatus(cfg.Agent.HealthyStatus),
	), nil
}

func userAgent() string { return "slovo-desktop/" + version }
