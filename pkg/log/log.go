// Package log builds the logrus logger shared by all autogit services.
// Lines are timestamped; debug lines only show up in verbose mode.
package log

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const (
	outputStdout = "stdout"
	outputStderr = "stderr"
	outputSyslog = "syslog"
	outputTest   = "test"

	syslogTag = "autogit"
)

// New returns a logger writing to logOutput (stdout when empty). Unknown
// levels fall back to info; unknown outputs are an error.
func New(logLevel string, logServer string, logOutput string) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	output, hook, err := getOutput(logServer, logOutput)
	if err != nil {
		return nil, err
	}

	log := &logrus.Logger{
		Out: output,
		Formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		},
		Hooks: make(logrus.LevelHooks),
		Level: level,
	}

	if hook != nil {
		log.Hooks.Add(hook)
	}

	return log, nil
}

func getOutput(logServer string, logOutput string) (io.Writer, logrus.Hook, error) {
	switch logOutput {
	case "", outputStdout:
		return os.Stdout, nil, nil
	case outputStderr:
		return os.Stderr, nil, nil
	case outputTest:
		_, hook := test.NewNullLogger()
		return ioutil.Discard, hook, nil
	case outputSyslog:
		hook, err := syslogHook(logServer)
		if err != nil {
			return nil, nil, err
		}
		return ioutil.Discard, hook, nil
	}

	return nil, nil, fmt.Errorf("unknown log output %q (want %s, %s, %s or %s)",
		logOutput, outputStdout, outputStderr, outputSyslog, outputTest)
}
