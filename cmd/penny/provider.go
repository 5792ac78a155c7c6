package main

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"

	"github.com/Veraticus/penny/internal/cli"
	"github.com/Veraticus/penny/internal/llm"
	"github.com/Veraticus/penny/internal/local"
	"github.com/Veraticus/penny/internal/model"
	"github.com/Veraticus/penny/internal/provider"
	"github.com/spf13/cobra"
)

func providerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Choose which model answers messages",
	}

	cmd.AddCommand(setProviderCmd())
	cmd.AddCommand(showProviderCmd())
	cmd.AddCommand(listProvidersCmd())

	return cmd
}

func setProviderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <provider>",
		Short: "Select the active provider",
		Example: `  penny provider set gemini --api-key $GEMINI_API_KEY
  penny provider set local`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.ToLower(strings.TrimSpace(args[0]))
			apiKey, _ := cmd.Flags().GetString("api-key")

			registry, err := newRegistry(newEngine())
			if err != nil {
				return err
			}
			if _, err := registry.Resolve(id); err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			current, err := store.GetModelStatus(ctx)
			if err != nil {
				return err
			}

			cfg := map[string]string{}
			if current.Provider == id {
				maps.Copy(cfg, current.ProviderConfig)
			}
			if apiKey != "" {
				cfg[llm.ConfigAPIKey] = apiKey
			}

			var modelPath *string
			isLoaded := false
			if id == provider.Local {
				modelPath, isLoaded = localModelFor(current)
			}

			if err := store.SetModelStatus(ctx, id, cfg, isLoaded, modelPath); err != nil {
				return fmt.Errorf("failed to save provider: %w", err)
			}
			slog.Debug("Provider selected", "provider", id, "model_path", deref(modelPath))

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, cli.FormatSuccess("Provider set to "+id)); err != nil {
				return err
			}
			if id != provider.Local && cfg[llm.ConfigAPIKey] == "" {
				_, err = fmt.Fprintln(out, cli.FormatWarning("No API key set. Pass --api-key to add one."))
			} else if id == provider.Local && modelPath == nil {
				_, err = fmt.Fprintln(out, cli.FormatWarning("No local model yet. Run: penny model load <file>"))
			}
			return err
		},
	}

	cmd.Flags().String("api-key", "", "API key for a remote provider")

	return cmd
}

// localModelFor keeps the current local model, or points at a staged file left
// from an earlier load.
func localModelFor(current model.ModelStatus) (*string, bool) {
	if current.IsLocal() && current.ModelPath != nil {
		return current.ModelPath, current.IsLoaded
	}
	staged := local.StagedPath(modelsDir())
	if fileExists(staged) {
		return &staged, false
	}
	return nil, false
}

func showProviderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active provider and its settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			status, err := store.GetModelStatus(ctx)
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), status)
		},
	}
}

func printStatus(w io.Writer, status model.ModelStatus) error {
	lines := []string{"Provider: " + status.Provider}
	if status.IsLocal() {
		path := "(none)"
		if status.ModelPath != nil {
			path = *status.ModelPath
		}
		lines = append(lines,
			"Model:    "+path,
			fmt.Sprintf("Loaded:   %t", status.IsLoaded),
		)
	} else {
		lines = append(lines, "API key:  "+maskKey(status.ProviderConfig[llm.ConfigAPIKey]))
	}

	_, err := fmt.Fprintln(w, cli.RenderBox(cli.RobotIcon+" Model status", strings.Join(lines, "\n")))
	return err
}

func listProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List providers and what each can do",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			status, err := store.GetModelStatus(ctx)
			if err != nil {
				return err
			}

			registry, err := newRegistry(newEngine())
			if err != nil {
				return err
			}
			return printProviders(cmd.OutOrStdout(), registry, status.Provider)
		},
	}
}

func printProviders(w io.Writer, registry *provider.Registry, active string) error {
	rows := make([][]string, 0, len(registry.IDs()))
	for _, id := range registry.IDs() {
		h, err := registry.Resolve(id)
		if err != nil {
			return err
		}

		caps := provider.Capabilities(h)
		names := make([]string, len(caps))
		for i, c := range caps {
			names[i] = string(c)
		}

		marker := ""
		if id == active {
			marker = "*"
		}
		rows = append(rows, []string{marker, id, strings.Join(names, ", ")})
	}

	_, err := fmt.Fprint(w, cli.RenderTable([]string{"", "Provider", "Capabilities"}, rows))
	return err
}
