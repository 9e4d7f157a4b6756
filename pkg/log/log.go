package log

import (
	"context"
	"fmt"
	"sync"
	"time"

	"civiclink/pkg/config"
)

type Severity int

const (
	Default   Severity = 0
	Debug     Severity = 100 // Debug or trace information
	Info      Severity = 200 // Routine information, such as ongoing status or performance
	Notice    Severity = 300 // Normal but significant events, such as start up, shut down, or a configuration change
	Warning   Severity = 400 // Warning events might cause problems
	Error     Severity = 500 // Error events are likely to cause problems
	Critical  Severity = 600 // Critical events cause more severe problems or outages
	Emergency Severity = 800 // One or more systems are unusable
)

// marker is the single character printed to the console for each severity
func (s Severity) marker() string {
	switch s {
	case Debug:
		return "D"
	case Info:
		return "I"
	case Notice:
		return "N"
	case Warning:
		return "W"
	case Error:
		return "E"
	case Critical:
		return "X"
	case Emergency:
		return "Z"
	}
	return "-"
}

type Labeler interface {
	Labels() map[string]string
}

// Labels is a ready-made Labeler for ad hoc label sets
type Labels map[string]string

func (l Labels) Labels() map[string]string {
	return l
}

type Log interface {
	Close() error
	Log(l Labeler, message string, severity Severity)
	Debugf(l Labeler, format string, args ...any)
	Infof(l Labeler, format string, args ...any)
	Noticef(l Labeler, format string, args ...any)
	Warningf(l Labeler, format string, args ...any)
	Errorf(l Labeler, format string, args ...any)
	Criticalf(l Labeler, format string, args ...any)
	Rawf(severity Severity, format string, args ...any)
}

var (
	logger Log
	mu     sync.RWMutex
)

func Logger() Log {
	mu.RLock()
	defer mu.RUnlock()

	if logger == nil {
		panic("logger is not initialized")
	}

	return logger
}

// Initialize installs the process logger. Cloud logging is used when a google cloud project is
// configured, console logging otherwise.
func Initialize(ctx context.Context, cfg *config.Config) (Log, error) {
	if len(cfg.GoogleCloud.ProjectID) > 0 {
		return InitializeGCPLogger(ctx, cfg, cfg.GoogleCloud.LogID)
	}
	return InitializeConsoleLogger(), nil
}

func setLogger(l Log) Log {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		logger = l
	}

	return logger
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05.000")
}

func printLine(severity Severity, message string) {
	fmt.Printf("%s [%s] %s\n", timestamp(), severity.marker(), message)
}
