package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// cliEnv isolates a test invocation: its own HOME, config file, and data
// directories, so nothing touches the developer's real paths.
type cliEnv struct {
	home       string
	configPath string
}

func setupCLITestEnv(t *testing.T) cliEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	configPath := filepath.Join(home, "flackit.toml")
	content := fmt.Sprintf(`[paths]
log_dir = %q
journal_path = %q
`, filepath.Join(home, "logs"), filepath.Join(home, "journal.db"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return cliEnv{home: home, configPath: configPath}
}

func runCLI(t *testing.T, env cliEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetArgs(append(args, "--config", env.configPath, "--quiet"))

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env)
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	for _, name := range []string{"analyze", "repair", "dedupe", "status", "config"} {
		requireContains(t, out, name)
	}
}
