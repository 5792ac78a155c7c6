package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig writes a config file pointing at a temp database and models dir.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`database:
  path: %s
models:
  dir: %s
logging:
  level: error
`, filepath.Join(dir, "penny.db"), filepath.Join(dir, "models"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func findCommand(t *testing.T, parent *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, sub := range parent.Commands() {
		if sub.Name() == name {
			return sub
		}
	}
	t.Fatalf("command %q not found under %q", name, parent.Name())
	return nil
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"chat", "ask", "add", "transactions", "spending", "provider", "model", "budgets", "migrate", "version"} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, findCommand(t, root, name))
		})
	}

	for parent, children := range map[string][]string{
		"provider": {"set", "show", "list"},
		"model":    {"load", "status", "remove"},
		"budgets":  {"set", "list"},
	} {
		cmd := findCommand(t, root, parent)
		for _, child := range children {
			assert.NotNil(t, findCommand(t, cmd, child))
		}
	}
}

func TestCommandFlags(t *testing.T) {
	root := newRootCmd()

	tests := []struct {
		cmd      *cobra.Command
		name     string
		flag     string
		defValue string
	}{
		{name: "chat plain", cmd: findCommand(t, root, "chat"), flag: "plain", defValue: "false"},
		{name: "ask chat", cmd: findCommand(t, root, "ask"), flag: "chat", defValue: "false"},
		{name: "transactions period", cmd: findCommand(t, root, "transactions"), flag: "period", defValue: "month"},
		{name: "transactions offset", cmd: findCommand(t, root, "transactions"), flag: "offset", defValue: "0"},
		{name: "spending period", cmd: findCommand(t, root, "spending"), flag: "period", defValue: "month"},
		{name: "provider set api-key", cmd: findCommand(t, findCommand(t, root, "provider"), "set"), flag: "api-key", defValue: ""},
		{name: "budgets set period", cmd: findCommand(t, findCommand(t, root, "budgets"), "set"), flag: "period", defValue: "monthly"},
		{name: "migrate status", cmd: findCommand(t, root, "migrate"), flag: "status", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := tt.cmd.Flag(tt.flag)
			require.NotNil(t, flag, "flag --%s should exist", tt.flag)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}

	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name))
	}
}

func TestMigrateCommand(t *testing.T) {
	configPath := setupTestConfig(t)

	out, err := runCommand(t, configPath, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "version 0 of 3")

	out, err = runCommand(t, configPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated to version 3")

	out, err = runCommand(t, configPath, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "version 3 of 3")
}

func TestInvalidConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unclosed"), 0o600))

	_, err := runCommand(t, path, "migrate", "--status")
	assert.Error(t, err)
}
