package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/penny/internal/assistant"
	"github.com/Veraticus/penny/internal/cli"
	"github.com/Veraticus/penny/internal/tui"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat screen",
		Long: `Chat with penny. Describe an expense ("coffee 4.50") to record it, or ask
about your spending ("how much did I spend on groceries this month?").

Prefix a message with /chat to talk without recording or reporting.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().Bool("plain", false, "Use a line-oriented prompt instead of the full-screen interface")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	ctx := cmd.Context()

	if plain {
		interrupts := cli.NewInterruptHandler(cmd.OutOrStdout(), "Chat interrupted!")
		ctx = interrupts.HandleInterrupts(ctx)

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return cli.RunChat(ctx, a.router, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	states := make(chan assistant.State, 16)
	a, err := openApp(ctx, assistant.WithStateObserver(func(s assistant.State) {
		select {
		case states <- s:
		default:
		}
	}))
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.store.GetModelStatus(ctx)
	if err != nil {
		return err
	}

	return tui.Run(ctx, a.router,
		tui.WithStates(states),
		tui.WithProvider(status.Provider),
		tui.WithEngine(a.engine),
	)
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a single message and print the reply",
		Example: `  penny ask "lunch 12.80"
  penny ask "what did I spend on coffee this week?"
  penny ask --chat "hello there"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plainChat, _ := cmd.Flags().GetBool("chat")
			text := strings.Join(args, " ")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			turn := a.router.Turn
			if plainChat {
				turn = a.router.Chat
			}

			reply, err := turn(cmd.Context(), text)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatReply(reply))
			return err
		},
	}

	cmd.Flags().Bool("chat", false, "Talk without recording or reporting")

	return cmd
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add <description>",
		Short:   "Record an expense described in plain words",
		Example: `  penny add "20 snacks"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			reply, err := a.router.Add(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(reply))
			return err
		},
	}
}

// stderrIsTerminal reports whether progress output should be drawn.
func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
