package config

import (
	"github.com/bpineau/autogit/pkg/ignore"
	"github.com/bpineau/autogit/pkg/log"
)

// FakeConfig returns an initialized configuration in dry-run mode, for
// unit tests. It doesn't touch the filesystem.
func FakeConfig(projects ...string) *AgConfig {
	logger, _ := log.New("debug", "", "test")

	return &AgConfig{
		DryRun:       true,
		Logger:       logger,
		Projects:     projects,
		Ignore:       ignore.New(".DS_Store", "*.swp"),
		CommitPrefix: "Update at",
	}
}
