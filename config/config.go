package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cast"

	"github.com/bpineau/autogit/pkg/ignore"
)

// ErrNoDirectories is returned by Init when there's nothing to watch.
var ErrNoDirectories = errors.New("no directories provided to watch")

var appFs = afero.NewOsFs()

// AgConfig is the configuration struct, shared by all services
type AgConfig struct {
	// When DryRun is true, we log but don't run mutating git commands
	DryRun bool

	// Logger should be used to send all logs
	Logger *logrus.Logger

	// Projects are the absolute paths of the watched directories
	Projects []string

	// IgnoreFile holds the path to the ignore rules file
	IgnoreFile string

	// Ignore holds the rules loaded from IgnoreFile, set by Init
	Ignore *ignore.RuleSet

	// PerProjectLock lets pipelines for distinct projects run concurrently.
	// By default a running pipeline blocks triggers for every project.
	PerProjectLock bool

	// NoPush disables git push after commits
	NoPush bool

	// CommitPrefix is the commit message's prefix, before the timestamp
	CommitPrefix string

	// CommandTimeout bounds git commands execution time. Zero means no timeout.
	CommandTimeout time.Duration

	// HealthPort is the facultative healthcheck port
	HealthPort int
}

// Init resolves the watched projects paths and loads the ignore rules.
// Any error here is fatal.
func (c *AgConfig) Init() error {
	if len(c.Projects) == 0 {
		return ErrNoDirectories
	}

	seen := make(map[string]bool)
	var projects []string
	for _, dir := range c.Projects {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("can't find %s absolute path (broken cwd?): %v", dir, err)
		}
		if !seen[abs] {
			seen[abs] = true
			projects = append(projects, abs)
		}
	}
	c.Projects = projects

	rules, err := ignore.Load(appFs, c.IgnoreFile)
	if err != nil {
		return err
	}
	c.Ignore = rules

	c.Logger.Infof("Loaded ignore patterns from %s", c.IgnoreFile)
	c.Logger.Debugf("Loaded ignore patterns: %s", strings.Join(rules.Patterns(), ", "))

	return nil
}

// SplitDirs flattens a comma separated list of directories, as found in
// the WATCH_DIRS environment variable, a cli flag, or a config file list.
func SplitDirs(value interface{}) []string {
	var dirs []string

	var items []string
	if s, ok := value.(string); ok {
		items = []string{s}
	} else {
		items = cast.ToStringSlice(value)
	}

	for _, item := range items {
		for _, dir := range strings.Split(item, ",") {
			if dir = strings.TrimSpace(dir); dir != "" {
				dirs = append(dirs, dir)
			}
		}
	}

	return dirs
}
