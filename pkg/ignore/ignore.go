// Package ignore loads gitignore-style rules and tells whether a path,
// relative to a watched project root, should be kept out of commits triggers.
package ignore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/spf13/afero"
)

// ErrConfigMissing is returned by Load when the rules file doesn't exist.
var ErrConfigMissing = errors.New("ignore rules file not found")

// RuleSet is an immutable, ordered list of ignore patterns.
type RuleSet struct {
	patterns []string
	matcher  gitignore.Matcher
}

// Load reads newline separated patterns from path. Blank lines and lines
// starting with '#' are skipped.
func Load(fs afero.Fs, path string) (*RuleSet, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %v", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", path, err)
	}

	return Parse(content), nil
}

// Parse builds a RuleSet from raw rules file content.
func Parse(content []byte) *RuleSet {
	var patterns []string

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}

	return New(patterns...)
}

// New compiles a RuleSet from patterns, in precedence order.
func New(patterns ...string) *RuleSet {
	ps := make([]gitignore.Pattern, 0, len(patterns))
	for _, p := range patterns {
		ps = append(ps, gitignore.ParsePattern(p, nil))
	}

	return &RuleSet{
		patterns: patterns,
		matcher:  gitignore.NewMatcher(ps),
	}
}

// Patterns returns a copy of the rules, in file order.
func (r *RuleSet) Patterns() []string {
	return append([]string(nil), r.patterns...)
}

// IsIgnored tells whether absPath, a file which should live under root,
// matches the rules. The root itself and paths outside root are never ignored.
func (r *RuleSet) IsIgnored(root, absPath string) bool {
	return r.match(root, absPath, false)
}

// IsIgnoredDir is IsIgnored for directories, which may match dir-only
// ("build/") rules.
func (r *RuleSet) IsIgnoredDir(root, absPath string) bool {
	return r.match(root, absPath, true)
}

func (r *RuleSet) match(root, absPath string, isDir bool) bool {
	rel, err := filepath.Rel(root, absPath)
	if err != nil || rel == "." || rel == "" {
		return false
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}

	return r.matcher.Match(strings.Split(rel, "/"), isDir)
}

// Predicate binds the rules to a project root, for use by watchers.
func (r *RuleSet) Predicate(root string) func(path string, isDir bool) bool {
	return func(absPath string, isDir bool) bool {
		return r.match(root, absPath, isDir)
	}
}
