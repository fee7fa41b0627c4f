// Package event mediates change notifications between watchers and the
// dispatcher firing commit pipelines.
package event

import "fmt"

// Action represents the kind of filesystem change we're notifying
type Action int

const (
	// Add is a file or directory creation
	Add Action = iota

	// Change is a file content change
	Change

	// Remove is a file or directory deletion
	Remove
)

func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Change:
		return "change"
	case Remove:
		return "remove"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Notification conveys a change under a watched project
type Notification struct {
	Action  Action
	Path    string
	Project string
}

// Notifier mediates notifications between watchers and dispatcher
type Notifier interface {
	Send(notif *Notification)
	ReadChan() <-chan Notification
}

// Unbuffered implements Notifier
type Unbuffered chan Notification

// New creates an Unbuffered
func New() Unbuffered {
	return make(chan Notification)
}

// Send sends a notification
func (c Unbuffered) Send(notif *Notification) {
	c <- *notif
}

// ReadChan returns a channel to read notifications from
func (c Unbuffered) ReadChan() <-chan Notification {
	return c
}
