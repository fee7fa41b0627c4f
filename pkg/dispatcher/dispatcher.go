// Package dispatcher receives change notifications from watchers, and fires
// a commit pipeline for the project they belong to.
package dispatcher

import (
	"context"
	"sync"

	"github.com/bpineau/autogit/pkg/event"
	"github.com/bpineau/autogit/pkg/pipeline"
)

type logger interface {
	Debugf(format string, args ...interface{})
}

// Trigger starts pipelines. TryStart must not block; Finish runs the
// pipeline and releases what TryStart took.
type Trigger interface {
	TryStart(project string) bool
	Finish(ctx context.Context, project string) pipeline.Outcome
}

// Dispatcher turns change notifications into pipeline runs. Notifications
// arriving while the project's pipeline is busy are dropped.
type Dispatcher struct {
	logger   logger
	notifier event.Notifier
	trigger  Trigger
	ctx      context.Context
	cancel   context.CancelFunc
	running  sync.WaitGroup
	stopch   chan struct{}
	donech   chan struct{}
}

// New creates a new Dispatcher
func New(log logger, notifier event.Notifier, trigger Trigger) *Dispatcher {
	return &Dispatcher{
		logger:   log,
		notifier: notifier,
		trigger:  trigger,
	}
}

// Start receives notifications, and fires pipelines in the background
func (d *Dispatcher) Start() *Dispatcher {
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.stopch = make(chan struct{})
	d.donech = make(chan struct{})

	go func() {
		defer close(d.donech)
		evCh := d.notifier.ReadChan()

		for {
			select {
			case <-d.stopch:
				return
			case ev := <-evCh:
				d.dispatch(ev)
			}
		}
	}()

	return d
}

// Stop stops the dispatcher, then cancels and waits for in-flight pipelines
func (d *Dispatcher) Stop() {
	close(d.stopch)
	<-d.donech
	d.cancel()
	d.running.Wait()
}

func (d *Dispatcher) dispatch(ev event.Notification) {
	d.logger.Debugf("%s: %s %s", ev.Project, ev.Action, ev.Path)

	if !d.trigger.TryStart(ev.Project) {
		return
	}

	d.running.Add(1)
	go func() {
		defer d.running.Done()
		d.trigger.Finish(d.ctx, ev.Project)
	}()
}
