// Package run implements the main autogit's loop, starting and
// stopping all services and watchers.
package run

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bpineau/autogit/config"
	"github.com/bpineau/autogit/pkg/dispatcher"
	"github.com/bpineau/autogit/pkg/event"
	"github.com/bpineau/autogit/pkg/guard"
	"github.com/bpineau/autogit/pkg/health"
	"github.com/bpineau/autogit/pkg/pipeline"
	"github.com/bpineau/autogit/pkg/store/git"
	"github.com/bpineau/autogit/pkg/watcher"
)

// newRunner is swapped by tests, to observe git invocations
var newRunner = func(timeout time.Duration) git.Runner {
	return git.NewExecRunner(timeout)
}

// Services holds the started services, so they can be stopped in order
type Services struct {
	watchers []*watcher.Watcher
	disp     *dispatcher.Dispatcher
	http     *health.Listener
}

// Start launchs the services: a dispatcher, one watcher per project, and
// the optional health check listener
func Start(conf *config.AgConfig) (*Services, error) {
	pipe := pipeline.New(conf.Logger, guard.New(conf.PerProjectLock), newRunner(conf.CommandTimeout),
		pipeline.Options{
			DryRun:       conf.DryRun,
			NoPush:       conf.NoPush,
			CommitPrefix: conf.CommitPrefix,
		})

	evts := event.New()
	svcs := &Services{
		disp: dispatcher.New(conf.Logger, evts, pipe).Start(),
	}

	for _, project := range conf.Projects {
		w, err := watcher.New(conf.Logger, project, conf.Ignore.Predicate(project), evts).Start()
		if err != nil {
			svcs.Stop()
			return nil, fmt.Errorf("failed to watch %s: %v", project, err)
		}
		svcs.watchers = append(svcs.watchers, w)
	}

	http, err := health.New(conf.Logger, conf.HealthPort, conf.Projects).Start()
	if err != nil {
		svcs.Stop()
		return nil, fmt.Errorf("failed to start http healtcheck handler: %v", err)
	}
	svcs.http = http

	return svcs, nil
}

// Stop halts the services, watchers first so the dispatcher drains them
func (s *Services) Stop() {
	for _, w := range s.watchers {
		w.Stop()
	}
	s.disp.Stop()
	if s.http != nil {
		s.http.Stop()
	}
}

// Run launchs the services and waits for a termination signal
func Run(conf *config.AgConfig) error {
	svcs, err := Start(conf)
	if err != nil {
		return err
	}

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGTERM)
	signal.Notify(sigterm, syscall.SIGINT)
	defer signal.Stop(sigterm)
	<-sigterm

	svcs.Stop()
	return nil
}
