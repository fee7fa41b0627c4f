package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/bpineau/autogit/config"
	"github.com/bpineau/autogit/pkg/ignore"
	"github.com/bpineau/autogit/pkg/run"
)

// most of cli binding code is executed through the magical init() mecanism.
// Flags values persist between Execute() calls, so order matters.
func TestRootCmd(t *testing.T) {
	t.Setenv("WATCH_DIRS", "")

	dir := t.TempDir()
	rules := filepath.Join(dir, ".ignore")
	if err := os.WriteFile(rules, []byte("*.swp\n"), 0600); err != nil {
		t.Fatalf("failed to write ignore rules: %v", err)
	}

	RootCmd.SetOutput(new(bytes.Buffer))

	// fatal configuration errors must happen before any watcher starts
	started := false
	runServices = func(conf *config.AgConfig) error {
		started = true
		return nil
	}

	RootCmd.SetArgs([]string{
		"--log-output",
		"test",
		"--ignore-file",
		rules,
	})
	if err := Execute(); !errors.Is(err, config.ErrNoDirectories) {
		t.Errorf("Execute() should fail without directories to watch, got %v", err)
	}

	t.Setenv("WATCH_DIRS", dir+","+t.TempDir())
	RootCmd.SetArgs([]string{
		"--log-output",
		"test",
		"--ignore-file",
		filepath.Join(dir, "missing"),
	})
	if err := Execute(); !errors.Is(err, ignore.ErrConfigMissing) {
		t.Errorf("Execute() should fail with a missing ignore file, got %v", err)
	}

	if started {
		t.Error("no service should start after a configuration error")
	}
	runServices = run.Run

	RootCmd.SetArgs([]string{
		"--config",
		"/dev/null",
		"--dry-run",
		"--verbose",
		"--per-project-lock",
		"--no-push",
		"--commit-prefix",
		"autosave",
		"--command-timeout",
		"30",
		"--log-output",
		"test",
		"--healthcheck-port",
		"0",
		"--ignore-file",
		rules,
		"--watch-dirs",
		t.TempDir(),
	})

	ch := make(chan error, 1)

	go func() {
		ch <- Execute()
	}()

	select {
	case err := <-ch:
		t.Fatalf("the main command shouldn't exit before a signal: %+v", err)
	case <-time.After(time.Second):
		_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
	}

	select {
	case err := <-ch:
		if err != nil {
			t.Errorf("Failed to execute the main command: %+v", err)
		}
	case <-time.After(10 * time.Second):
		t.Error("Timeout waiting for the execute command to exit after SIGTERM")
	}

	RootCmd.SetArgs([]string{
		"--dry-run",
		"--config",
	})
	if err := Execute(); err == nil {
		t.Error("Execute() should fail with missing flags arguments")
	}
}

func TestVersion(t *testing.T) {
	RootCmd.SetOutput(new(bytes.Buffer))
	RootCmd.SetArgs([]string{"version"})
	if err := RootCmd.Execute(); err != nil {
		t.Errorf("version subcommand shouldn't fail: %+v", err)
	}
}
