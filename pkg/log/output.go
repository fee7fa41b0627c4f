//go:build !windows
// +build !windows

package log

import (
	"fmt"
	"log/syslog"

	"github.com/sirupsen/logrus"
	ls "github.com/sirupsen/logrus/hooks/syslog"
)

// syslogHook ships entries to a remote syslog server, over udp.
func syslogHook(logServer string) (logrus.Hook, error) {
	if logServer == "" {
		return nil, fmt.Errorf("syslog output needs a log server (ie. 127.0.0.1:514)")
	}

	hook, err := ls.NewSyslogHook("udp", logServer, syslog.LOG_INFO|syslog.LOG_DAEMON, syslogTag)
	if err != nil {
		return nil, fmt.Errorf("failed to hook syslog output to %s: %v", logServer, err)
	}

	return hook, nil
}
