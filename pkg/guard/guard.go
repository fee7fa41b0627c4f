// Package guard provides the mutual exclusion token that keeps at most one
// commit pipeline running, either for the whole process or per project.
package guard

import "sync"

// Guard is taken before running a pipeline for a project.
type Guard interface {
	// TryAcquire takes the token for project, without blocking. It
	// returns false if the token is already held.
	TryAcquire(project string) bool

	// Release gives the token back.
	Release(project string)
}

// Global is a single process-wide flag: while a pipeline runs for any
// project, no other pipeline may start.
type Global struct {
	mu   sync.Mutex
	busy bool
}

// NewGlobal returns a process-wide guard.
func NewGlobal() *Global {
	return &Global{}
}

// TryAcquire implements Guard. The project is not considered.
func (g *Global) TryAcquire(project string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	return true
}

// Release implements Guard.
func (g *Global) Release(project string) {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}

// PerProject holds one token per project, so a slow push on a project
// doesn't hold back the others.
type PerProject struct {
	mu   sync.Mutex
	busy map[string]bool
}

// NewPerProject returns a guard with one token per project.
func NewPerProject() *PerProject {
	return &PerProject{busy: make(map[string]bool)}
}

// TryAcquire implements Guard.
func (g *PerProject) TryAcquire(project string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[project] {
		return false
	}
	g.busy[project] = true
	return true
}

// Release implements Guard.
func (g *PerProject) Release(project string) {
	g.mu.Lock()
	delete(g.busy, project)
	g.mu.Unlock()
}

// New returns a process-wide Global guard, unless perProject is set.
func New(perProject bool) Guard {
	if perProject {
		return NewPerProject()
	}
	return NewGlobal()
}
