package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpineau/autogit/pkg/guard"
	"github.com/bpineau/autogit/pkg/store/git"
)

var fixedTime = time.Date(2024, 3, 14, 15, 9, 26, 0, time.FixedZone("CET", 3600))

type fakeRunner struct {
	sync.Mutex
	calls   [][]string
	dirty   bool
	fail    map[string]bool
	started chan struct{}
	unblock chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, dir string, args ...string) (git.Result, error) {
	f.Lock()
	f.calls = append(f.calls, append([]string{dir}, args...))
	f.Unlock()

	if f.started != nil && args[0] == "status" {
		f.started <- struct{}{}
		<-f.unblock
	}

	if f.fail[args[0]] {
		return git.Result{ExitCode: 1}, &git.ExecutionError{Args: args, Dir: dir, ExitCode: 1, Err: errors.New("exit status 1")}
	}

	if args[0] == "status" && f.dirty {
		return git.Result{Stdout: " M main.go\n"}, nil
	}

	return git.Result{}, nil
}

func (f *fakeRunner) subcommands() []string {
	f.Lock()
	defer f.Unlock()
	var cmds []string
	for _, c := range f.calls {
		cmds = append(cmds, c[1])
	}
	return cmds
}

func newTestPipeline(runner git.Runner, g guard.Guard, opts Options) (*Pipeline, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	p := New(logger, g, runner, opts)
	p.now = func() time.Time { return fixedTime }
	return p, hook
}

func TestCleanTree(t *testing.T) {
	runner := &fakeRunner{}
	p, _ := newTestPipeline(runner, guard.NewGlobal(), Options{})

	assert.Equal(t, Clean, p.Trigger(context.Background(), "/srv/a"))
	assert.Equal(t, []string{"status"}, runner.subcommands())
}

func TestDirtyTree(t *testing.T) {
	runner := &fakeRunner{dirty: true}
	p, hook := newTestPipeline(runner, guard.NewGlobal(), Options{})

	assert.Equal(t, Pushed, p.Trigger(context.Background(), "/srv/a"))
	assert.Equal(t, []string{"status", "add", "commit", "push"}, runner.subcommands())

	logged := false
	for _, e := range hook.AllEntries() {
		if strings.HasSuffix(e.Message, "detected changes:\n M main.go") {
			logged = true
		}
	}
	assert.True(t, logged, "changes should be logged with their status column")

	commit := runner.calls[2]
	require.Equal(t, []string{"/srv/a", "commit", "-m"}, commit[:3])
	assert.Equal(t, "Update at 2024-03-14T14:09:26Z", commit[3])

	stamp := strings.TrimPrefix(commit[3], DefaultCommitPrefix+" ")
	_, err := time.Parse(time.RFC3339, stamp)
	assert.NoError(t, err, "commit message should carry a valid timestamp")

	for _, c := range runner.calls {
		assert.Equal(t, "/srv/a", c[0])
	}
}

func TestStageFailures(t *testing.T) {
	tests := []struct {
		failing  string
		outcome  Outcome
		commands []string
	}{
		{"status", StatusFailed, []string{"status"}},
		{"add", StageFailed, []string{"status", "add"}},
		{"commit", CommitFailed, []string{"status", "add", "commit"}},
		{"push", PushFailed, []string{"status", "add", "commit", "push"}},
	}

	for _, tt := range tests {
		t.Run(tt.failing, func(t *testing.T) {
			runner := &fakeRunner{dirty: true, fail: map[string]bool{tt.failing: true}}
			g := guard.NewGlobal()
			p, hook := newTestPipeline(runner, g, Options{})

			assert.Equal(t, tt.outcome, p.Trigger(context.Background(), "/srv/a"))
			assert.Equal(t, tt.commands, runner.subcommands())
			assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
			assert.True(t, g.TryAcquire("/srv/a"), "guard should be released after a failure")
		})
	}
}

func TestNoPush(t *testing.T) {
	runner := &fakeRunner{dirty: true}
	p, _ := newTestPipeline(runner, guard.NewGlobal(), Options{NoPush: true, CommitPrefix: "autosave"})

	assert.Equal(t, Committed, p.Trigger(context.Background(), "/srv/a"))
	assert.Equal(t, []string{"status", "add", "commit"}, runner.subcommands())
	assert.Equal(t, "autosave 2024-03-14T14:09:26Z", runner.calls[2][3])
}

func TestDryRun(t *testing.T) {
	runner := &fakeRunner{dirty: true}
	p, _ := newTestPipeline(runner, guard.NewGlobal(), Options{DryRun: true})

	assert.Equal(t, Pushed, p.Trigger(context.Background(), "/srv/a"))
	assert.Equal(t, []string{"status"}, runner.subcommands())
}

func TestBusyTriggersAreDropped(t *testing.T) {
	for _, global := range []bool{true, false} {
		runner := &fakeRunner{
			dirty:   true,
			started: make(chan struct{}),
			unblock: make(chan struct{}),
		}
		p, _ := newTestPipeline(runner, guard.New(!global), Options{})

		done := make(chan Outcome, 1)
		go func() {
			done <- p.Trigger(context.Background(), "/srv/a")
		}()
		<-runner.started

		assert.Equal(t, Busy, p.Trigger(context.Background(), "/srv/a"))
		if global {
			assert.Equal(t, Busy, p.Trigger(context.Background(), "/srv/b"))
		}
		assert.Equal(t, []string{"status"}, runner.subcommands(), "no commands while the guard is held")

		close(runner.unblock)
		select {
		case outcome := <-done:
			assert.Equal(t, Pushed, outcome)
		case <-time.After(5 * time.Second):
			t.Fatal("pipeline didn't complete")
		}

		runner.started = nil
		assert.Equal(t, Pushed, p.Trigger(context.Background(), "/srv/a"), "guard should be released")
	}
}

func TestPerProjectGuardLetsOtherProjectsRun(t *testing.T) {
	blocking := &fakeRunner{started: make(chan struct{}), unblock: make(chan struct{})}
	p, _ := newTestPipeline(blocking, guard.NewPerProject(), Options{})

	done := make(chan Outcome, 1)
	go func() {
		done <- p.Trigger(context.Background(), "/srv/a")
	}()
	<-blocking.started

	assert.True(t, p.TryStart("/srv/b"))
	assert.False(t, p.TryStart("/srv/a"))

	close(blocking.unblock)
	assert.Equal(t, Clean, <-done)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "push failed", PushFailed.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
