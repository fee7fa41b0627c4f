// Package pipeline runs the guarded status, add, commit and push sequence
// keeping a watched project committed and pushed.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/bpineau/autogit/pkg/guard"
	"github.com/bpineau/autogit/pkg/store/git"
)

// DefaultCommitPrefix starts every commit message; the UTC time follows.
const DefaultCommitPrefix = "Update at"

// Outcome is the terminal state of a pipeline invocation.
type Outcome int

const (
	// Busy means the guard was held, and the trigger was dropped
	Busy Outcome = iota

	// Clean means there was nothing to commit
	Clean

	// Committed means changes were committed, but pushes are disabled
	Committed

	// Pushed means changes were committed and pushed
	Pushed

	// StatusFailed means git status failed
	StatusFailed

	// StageFailed means git add failed; nothing was committed
	StageFailed

	// CommitFailed means git commit failed; nothing was pushed
	CommitFailed

	// PushFailed means git push failed; the commit stays local
	PushFailed
)

func (o Outcome) String() string {
	switch o {
	case Busy:
		return "busy"
	case Clean:
		return "clean"
	case Committed:
		return "committed"
	case Pushed:
		return "pushed"
	case StatusFailed:
		return "status failed"
	case StageFailed:
		return "stage failed"
	case CommitFailed:
		return "commit failed"
	case PushFailed:
		return "push failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

type logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Options tune the pipeline behavior.
type Options struct {
	// DryRun logs mutating git commands instead of running them
	DryRun bool

	// NoPush stops the pipeline after the commit
	NoPush bool

	// CommitPrefix defaults to DefaultCommitPrefix
	CommitPrefix string
}

// Pipeline commits and pushes projects' pending changes, at most one run
// at a time per guard token.
type Pipeline struct {
	logger logger
	guard  guard.Guard
	runner git.Runner
	opts   Options

	// now is swapped by tests
	now func() time.Time
}

// New creates a new Pipeline.
func New(log logger, g guard.Guard, runner git.Runner, opts Options) *Pipeline {
	if opts.CommitPrefix == "" {
		opts.CommitPrefix = DefaultCommitPrefix
	}

	return &Pipeline{
		logger: log,
		guard:  g,
		runner: runner,
		opts:   opts,
		now:    time.Now,
	}
}

// Trigger runs the pipeline for project, unless a pipeline already holds
// the guard: in that case the trigger is dropped, not queued.
func (p *Pipeline) Trigger(ctx context.Context, project string) Outcome {
	if !p.TryStart(project) {
		return Busy
	}
	return p.Finish(ctx, project)
}

// TryStart takes the guard for project. On success, the caller must call
// Finish, which releases it.
func (p *Pipeline) TryStart(project string) bool {
	if !p.guard.TryAcquire(project) {
		p.logger.Debugf("Commit process is already in progress, skipping event for %s", project)
		return false
	}
	return true
}

// Finish runs the pipeline for a project whose guard was taken with
// TryStart, then releases the guard.
func (p *Pipeline) Finish(ctx context.Context, project string) Outcome {
	defer p.guard.Release(project)
	return p.run(ctx, project)
}

// CommitMessage returns the commit message for a commit made at t.
func (p *Pipeline) CommitMessage(t time.Time) string {
	return fmt.Sprintf("%s %s", p.opts.CommitPrefix, t.UTC().Format(time.RFC3339))
}

func (p *Pipeline) run(ctx context.Context, project string) Outcome {
	repo := git.New(p.logger, p.runner, p.opts.DryRun, project)

	changed, porcelain, err := repo.Status(ctx)
	if err != nil {
		p.logger.Errorf("%s: %v", project, err)
		return StatusFailed
	}

	if !changed {
		p.logger.Infof("%s: no changes to commit", project)
		return Clean
	}

	p.logger.Infof("%s: detected changes:\n%s", project, porcelain)

	if err = repo.Add(ctx); err != nil {
		p.logger.Errorf("%s: %v", project, err)
		return StageFailed
	}

	msg := p.CommitMessage(p.now())
	p.logger.Debugf("%s: preparing to commit with message: %s", project, msg)

	if err = repo.Commit(ctx, msg); err != nil {
		p.logger.Errorf("%s: %v", project, err)
		return CommitFailed
	}
	p.logger.Infof("%s: committed: %s", project, msg)

	if p.opts.NoPush {
		return Committed
	}

	if err = repo.Push(ctx); err != nil {
		p.logger.Errorf("%s: %v", project, err)
		return PushFailed
	}
	p.logger.Infof("%s: changes pushed successfully", project)

	return Pushed
}
