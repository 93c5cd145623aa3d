package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points config and cache lookups at fresh temp directories.
func isolate(t *testing.T) (configDir, cacheDir string) {
	t.Helper()
	configDir, cacheDir = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("XDG_CACHE_HOME", cacheDir)
	return configDir, cacheDir
}

// run executes the command tree with args and returns what commands wrote
// to their output stream.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"solve", "labels", "state", "render", "serve", "tui", "storage", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag not registered")
	}
}

func TestExecuteVerbose(t *testing.T) {
	isolate(t)
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	if err := c.Execute(context.Background(), []string{"-v", "solve", "--json"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := c.Logger.GetLevel(); got != LogDebug {
		t.Errorf("log level = %v, want debug", got)
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	isolate(t)
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "solve")
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestConfigDefaultsAreUsed(t *testing.T) {
	configDir, _ := isolate(t)
	dir := filepath.Join(configDir, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := `[defaults]
p0x = 0
p0y = 10
p1x = -10
p1y = 0
p2x = 10
p2y = 0
p3x = 0
p3y = -10
fm = 10
fd = 270
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "state", "encode")
	if err != nil {
		t.Fatalf("state encode error: %v", err)
	}
	if !strings.Contains(out, "fd=270") || !strings.Contains(out, "p0y=10") {
		t.Errorf("encode output = %q, want configured defaults", out)
	}
}
