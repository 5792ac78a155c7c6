package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/local"
	"github.com/Veraticus/penny/internal/model"
	"github.com/Veraticus/penny/internal/storage"
)

func strPtr(s string) *string { return &s }

// openTestStore opens the database the config file points at. Call after a
// command has run so viper holds the configured path.
func openTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(databasePath())
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestProviderCommands(t *testing.T) {
	configPath := setupTestConfig(t)

	out, err := runCommand(t, configPath, "provider", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Provider: local")
	assert.Contains(t, out, "Loaded:   false")

	out, err = runCommand(t, configPath, "provider", "set", "gemini", "--api-key", "sk-test-abcd1234")
	require.NoError(t, err)
	assert.Contains(t, out, "Provider set to gemini")
	assert.NotContains(t, out, "No API key set")

	out, err = runCommand(t, configPath, "provider", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Provider: gemini")
	assert.Contains(t, out, "************1234")
	assert.NotContains(t, out, "sk-test")

	// Re-selecting the same provider keeps the stored key.
	_, err = runCommand(t, configPath, "provider", "set", "GEMINI")
	require.NoError(t, err)
	status, err := openTestStore(t).GetModelStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-test-abcd1234", status.ProviderConfig["apiKey"])

	out, err = runCommand(t, configPath, "provider", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "openai")
	assert.Contains(t, out, "conversationalReportFromSQL")
	assert.Contains(t, out, "parseExpense")
}

func TestProviderSetWarnsWithoutKey(t *testing.T) {
	configPath := setupTestConfig(t)

	out, err := runCommand(t, configPath, "provider", "set", "openai")
	require.NoError(t, err)
	assert.Contains(t, out, "No API key set")
}

func TestProviderSetUnsupported(t *testing.T) {
	configPath := setupTestConfig(t)

	_, err := runCommand(t, configPath, "provider", "set", "anthropic")
	assert.ErrorIs(t, err, common.ErrUnsupportedProvider)
}

func TestProviderSetLocalUsesStagedModel(t *testing.T) {
	configPath := setupTestConfig(t)

	_, err := runCommand(t, configPath, "provider", "set", "gemini", "--api-key", "k")
	require.NoError(t, err)

	staged := local.StagedPath(modelsDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(staged), 0o750))
	require.NoError(t, os.WriteFile(staged, []byte("gguf"), 0o600))

	out, err := runCommand(t, configPath, "provider", "set", "local")
	require.NoError(t, err)
	assert.NotContains(t, out, "No local model yet")

	status, err := openTestStore(t).GetModelStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProvider, status.Provider)
	require.NotNil(t, status.ModelPath)
	assert.Equal(t, staged, *status.ModelPath)
	assert.False(t, status.IsLoaded)
	assert.Empty(t, status.ProviderConfig)
}

func TestAskWithoutCredentialFails(t *testing.T) {
	configPath := setupTestConfig(t)

	_, err := runCommand(t, configPath, "provider", "set", "gemini")
	require.NoError(t, err)

	_, err = runCommand(t, configPath, "ask", "coffee 4.50")
	assert.ErrorIs(t, err, common.ErrMissingCredential)

	_, err = runCommand(t, configPath, "add", "coffee 4.50")
	assert.ErrorIs(t, err, common.ErrMissingCredential)
}

func TestAskLocalWithoutModelFails(t *testing.T) {
	configPath := setupTestConfig(t)

	_, err := runCommand(t, configPath, "ask", "--chat", "hello")
	assert.ErrorIs(t, err, common.ErrModelNotLoaded)
}

func TestTransactionsAndSpending(t *testing.T) {
	configPath := setupTestConfig(t)

	out, err := runCommand(t, configPath, "transactions")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions in this period.")

	store := openTestStore(t)
	ctx := context.Background()
	_, _, err = store.AddTransaction(ctx, model.TransactionInput{
		Amount:   4.5,
		Category: "coffee",
		Item:     strPtr("latte"),
	}, nil)
	require.NoError(t, err)
	_, _, err = store.AddTransaction(ctx, model.TransactionInput{
		Amount:   20,
		Category: "snacks",
	}, nil)
	require.NoError(t, err)

	out, err = runCommand(t, configPath, "transactions", "--period", "week")
	require.NoError(t, err)
	assert.Contains(t, out, "latte")
	assert.Contains(t, out, "coffee")
	assert.Contains(t, out, "$4.50")
	assert.Contains(t, out, "$24.50")

	out, err = runCommand(t, configPath, "spending", "--period", "day")
	require.NoError(t, err)
	assert.Contains(t, out, "Spent $24.50")
	assert.Contains(t, out, "snacks")

	out, err = runCommand(t, configPath, "transactions", "--period", "month", "--offset", "-1")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions in this period.")

	_, err = runCommand(t, configPath, "spending", "--period", "year")
	assert.Error(t, err)
}

func TestBudgetCommands(t *testing.T) {
	configPath := setupTestConfig(t)

	out, err := runCommand(t, configPath, "budgets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No budgets yet")

	out, err = runCommand(t, configPath, "budgets", "set", "coffee", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget for coffee set to $30.00 monthly")

	store := openTestStore(t)
	_, _, err = store.AddTransaction(context.Background(), model.TransactionInput{Amount: 4.5, Category: "coffee"}, nil)
	require.NoError(t, err)

	out, err = runCommand(t, configPath, "budgets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "coffee")
	assert.Contains(t, out, "$30.00")
	assert.Contains(t, out, "$25.50")

	_, err = runCommand(t, configPath, "budgets", "set", "coffee", "lots")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = runCommand(t, configPath, "budgets", "set", "coffee", "10", "--period", "daily")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestModelStatusAndRemove(t *testing.T) {
	configPath := setupTestConfig(t)

	out, err := runCommand(t, configPath, "model", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Provider: local")
	assert.Contains(t, out, "No staged model file.")

	staged := local.StagedPath(modelsDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(staged), 0o750))
	require.NoError(t, os.WriteFile(staged, []byte("gguf"), 0o600))

	store := openTestStore(t)
	require.NoError(t, store.SetModelStatus(context.Background(), "local", nil, true, &staged))

	out, err = runCommand(t, configPath, "model", "remove")
	require.NoError(t, err)
	assert.Contains(t, out, "Local model removed")
	assert.NoFileExists(t, staged)

	status, err := store.GetModelStatus(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status.ModelPath)
	assert.False(t, status.IsLoaded)
}

func TestModelLoadMissingFile(t *testing.T) {
	configPath := setupTestConfig(t)

	_, err := runCommand(t, configPath, "model", "load", filepath.Join(t.TempDir(), "missing.gguf"))
	assert.Error(t, err)
}

func TestDatabasePathFromConfig(t *testing.T) {
	configPath := setupTestConfig(t)

	_, err := runCommand(t, configPath, "migrate")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(configPath), "penny.db"), viper.GetString("database.path"))
	assert.FileExists(t, databasePath())
}
