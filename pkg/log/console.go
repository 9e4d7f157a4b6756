package log

import (
	"fmt"
	"sort"
	"strings"
)

// InitializeConsoleLogger installs a logger that only writes to stdout, used for local
// development and tests.
func InitializeConsoleLogger() Log {
	return setLogger(&consoleLogger{})
}

type consoleLogger struct{}

func (cl *consoleLogger) Close() error {
	return nil
}

func (cl *consoleLogger) Log(l Labeler, message string, severity Severity) {
	if l != nil {
		if labels := formatLabels(l.Labels()); len(labels) > 0 {
			message = fmt.Sprintf("%s %s", message, labels)
		}
	}
	printLine(severity, message)
}

func (cl *consoleLogger) Rawf(severity Severity, format string, args ...any) {
	cl.Log(nil, fmt.Sprintf(format, args...), severity)
}

func (cl *consoleLogger) Debugf(l Labeler, format string, args ...any) {
	cl.Log(l, fmt.Sprintf(format, args...), Debug)
}

func (cl *consoleLogger) Infof(l Labeler, format string, args ...any) {
	cl.Log(l, fmt.Sprintf(format, args...), Info)
}

func (cl *consoleLogger) Noticef(l Labeler, format string, args ...any) {
	cl.Log(l, fmt.Sprintf(format, args...), Notice)
}

func (cl *consoleLogger) Warningf(l Labeler, format string, args ...any) {
	cl.Log(l, fmt.Sprintf(format, args...), Warning)
}

func (cl *consoleLogger) Errorf(l Labeler, format string, args ...any) {
	cl.Log(l, fmt.Sprintf(format, args...), Error)
}

func (cl *consoleLogger) Criticalf(l Labeler, format string, args ...any) {
	cl.Log(l, fmt.Sprintf(format, args...), Critical)
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, labels[k]))
	}

	return "{" + strings.Join(parts, " ") + "}"
}
