package git

import (
	"context"
	"fmt"
	"strings"
)

type logger interface {
	Infof(format string, args ...interface{})
}

// Repo wraps the git commands we run against a watched project.
type Repo struct {
	Logger logger
	Dir    string
	Runner Runner
	DryRun bool
}

// New returns a Repo for dir. In dry-run mode, only read-only commands
// are really executed.
func New(log logger, runner Runner, dryRun bool, dir string) *Repo {
	return &Repo{
		Logger: log,
		Dir:    dir,
		Runner: runner,
		DryRun: dryRun,
	}
}

// Git runs a mutating git command, unless we're in dry-run mode.
func (r *Repo) Git(ctx context.Context, args ...string) error {
	if r.DryRun {
		r.Logger.Infof("dry-run: would run git %s in %s", strings.Join(args, " "), r.Dir)
		return nil
	}

	_, err := r.Runner.Run(ctx, r.Dir, args...)
	return err
}

// Status runs git status --porcelain, and tells whether the working tree
// has pending changes. The raw porcelain output is returned too.
func (r *Repo) Status(ctx context.Context) (changed bool, porcelain string, err error) {
	res, err := r.Runner.Run(ctx, r.Dir, "status", "--porcelain")
	if err != nil {
		return false, "", fmt.Errorf("failed to check git status: %w", err)
	}

	// the first column of porcelain lines may be a space
	porcelain = strings.TrimRight(res.Stdout, "\n")
	return strings.TrimSpace(porcelain) != "", porcelain, nil
}

// Add stages all the directory's changes.
func (r *Repo) Add(ctx context.Context) error {
	if err := r.Git(ctx, "add", "."); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit commits the staged changes with msg.
func (r *Repo) Commit(ctx context.Context, msg string) error {
	if err := r.Git(ctx, "commit", "-m", msg); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Push git push to the configured upstream.
func (r *Repo) Push(ctx context.Context) error {
	if err := r.Git(ctx, "push"); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}
