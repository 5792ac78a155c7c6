package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/penny/internal/assistant"
	"github.com/Veraticus/penny/internal/config"
	"github.com/Veraticus/penny/internal/llm"
	"github.com/Veraticus/penny/internal/local"
	"github.com/Veraticus/penny/internal/provider"
	"github.com/Veraticus/penny/internal/service"
	"github.com/Veraticus/penny/internal/storage"
	"github.com/spf13/viper"
)

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(databasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func databasePath() string {
	return config.PathOrDefault(viper.GetString("database.path"), config.DefaultDatabasePath)
}

func modelsDir() string {
	return config.PathOrDefault(viper.GetString("models.dir"), config.DefaultModelsDir)
}

// newEngine builds the on-device engine from config. No process starts until Load.
func newEngine() *local.Engine {
	params := local.DefaultParams()
	if v := viper.GetInt("local.context_size"); v > 0 {
		params.ContextSize = v
	}
	if viper.IsSet("local.gpu_layers") {
		params.GPULayers = viper.GetInt("local.gpu_layers")
	}
	if v := viper.GetInt("local.batch_size"); v > 0 {
		params.BatchSize = v
	}

	runtime := local.NewServerRuntime(viper.GetString("local.server_path"), nil)
	return local.NewEngine(runtime, params)
}

func remoteConfigs() map[string]llm.Config {
	rpm := viper.GetInt("llm.rate_limit")
	return map[string]llm.Config{
		provider.Gemini: {
			Model:             viper.GetString("llm.gemini_model"),
			BaseURL:           viper.GetString("llm.gemini_base_url"),
			RequestsPerMinute: rpm,
		},
		provider.OpenAI: {
			Model:             viper.GetString("llm.openai_model"),
			BaseURL:           viper.GetString("llm.openai_base_url"),
			RequestsPerMinute: rpm,
		},
	}
}

func newRegistry(engine *local.Engine) (*provider.Registry, error) {
	return provider.NewDefaultRegistry(engine, remoteConfigs())
}

// app bundles what a chat session needs.
type app struct {
	store  service.Storage
	engine *local.Engine
	router *assistant.Router
}

// openApp opens storage, restores the recorded local model and builds a router.
func openApp(ctx context.Context, opts ...assistant.Option) (*app, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	engine := newEngine()
	if err := restoreLocalModel(ctx, store, engine); err != nil {
		_ = engine.Close()
		_ = store.Close()
		return nil, err
	}

	registry, err := newRegistry(engine)
	if err != nil {
		_ = engine.Close()
		_ = store.Close()
		return nil, err
	}

	return &app{
		store:  store,
		engine: engine,
		router: assistant.NewRouter(registry, store, opts...),
	}, nil
}

func (a *app) Close() {
	if err := a.engine.Close(); err != nil {
		slog.Warn("Failed to stop local model", "error", err)
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// restoreLocalModel loads the model recorded in status when the local provider
// is active. A failed load is recorded and the session continues without it.
func restoreLocalModel(ctx context.Context, store service.StatusStore, engine *local.Engine) error {
	status, err := store.GetModelStatus(ctx)
	if err != nil {
		return err
	}
	if !status.IsLocal() || status.ModelPath == nil {
		return nil
	}

	path := *status.ModelPath
	if err := engine.Load(ctx, path); err != nil {
		slog.Warn("Failed to load local model", "path", path, "error", err)
		return store.SetModelStatus(ctx, status.Provider, status.ProviderConfig, false, &path)
	}

	if !status.IsLoaded {
		return store.SetModelStatus(ctx, status.Provider, status.ProviderConfig, true, &path)
	}
	return nil
}

// maskKey hides all but the last four characters of a credential.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	const visible = 4
	if len(key) <= visible {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-visible) + key[len(key)-visible:]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
