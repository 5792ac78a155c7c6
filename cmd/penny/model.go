package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/penny/internal/cli"
	"github.com/Veraticus/penny/internal/local"
	"github.com/Veraticus/penny/internal/model"
	"github.com/Veraticus/penny/internal/provider"
	"github.com/Veraticus/penny/internal/service"
	"github.com/spf13/cobra"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the on-device model",
	}

	cmd.AddCommand(loadModelCmd())
	cmd.AddCommand(modelStatusCmd())
	cmd.AddCommand(removeModelCmd())

	return cmd
}

func loadModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.gguf>",
		Short: "Stage a model file, verify it loads, and make it the active provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var progress io.Writer
			if stderrIsTerminal() {
				progress = os.Stderr
			}

			staged, err := local.StageModel(args[0], modelsDir(), progress)
			if err != nil {
				return err
			}

			engine := newEngine()
			defer func() { _ = engine.Close() }()

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, cli.FormatInfo("Loading model...")); err != nil {
				return err
			}
			if err := engine.Load(ctx, staged); err != nil {
				if setErr := store.SetModelStatus(ctx, provider.Local, nil, false, &staged); setErr != nil {
					return setErr
				}
				return err
			}

			if err := store.SetModelStatus(ctx, provider.Local, nil, true, &staged); err != nil {
				return fmt.Errorf("failed to record model status: %w", err)
			}

			_, err = fmt.Fprintln(out, cli.FormatSuccess("Model ready: "+staged))
			return err
		},
	}
}

func modelStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the recorded model status",
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
			if err := printStatus(cmd.OutOrStdout(), status); err != nil {
				return err
			}

			staged := local.StagedPath(modelsDir())
			if !fileExists(staged) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No staged model file."))
			}
			return err
		},
	}
}

func removeModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the staged model file and clear the local model status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := local.RemoveStaged(modelsDir()); err != nil {
				return err
			}

			status, err := store.GetModelStatus(ctx)
			if err != nil {
				return err
			}
			if err := clearLocalStatus(ctx, store, status); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Local model removed"))
			return err
		},
	}
}

// clearLocalStatus drops the status record when it describes the local model.
// A remote provider's settings are kept.
func clearLocalStatus(ctx context.Context, store service.StatusStore, status model.ModelStatus) error {
	if !status.IsLocal() {
		return nil
	}
	if err := store.DeleteModelStatus(ctx); err != nil {
		return fmt.Errorf("failed to clear model status: %w", err)
	}
	return nil
}
