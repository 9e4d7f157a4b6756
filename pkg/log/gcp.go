package log

import (
	"context"
	"fmt"

	"civiclink/pkg/config"

	"cloud.google.com/go/logging"
	"google.golang.org/api/option"
)

func InitializeGCPLogger(ctx context.Context, cfg *config.Config, logID string) (Log, error) {
	opts := make([]option.ClientOption, 0)
	if len(cfg.GoogleCloud.ServiceAccountFilename) > 0 {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCloud.ServiceAccountFilename))
	}

	client, err := logging.NewClient(ctx, cfg.GoogleCloud.ProjectID, opts...)
	if err != nil {
		return nil, err
	}

	if client == nil {
		return nil, fmt.Errorf("error creating logging client")
	}

	return setLogger(&gcpLogger{
		client: client,
		logger: client.Logger(logID),
	}), nil
}

type gcpLogger struct {
	client *logging.Client
	logger *logging.Logger
}

func (gl *gcpLogger) Close() error {
	if err := gl.logger.Flush(); err != nil {
		return err
	}
	return gl.client.Close()
}

func (gl *gcpLogger) Log(l Labeler, message string, severity Severity) {
	var labels map[string]string
	if l != nil {
		labels = l.Labels()
	}
	gl.logger.Log(logging.Entry{Payload: message, Severity: logging.Severity(severity), Labels: labels})
	printLine(severity, message)
}

func (gl *gcpLogger) Rawf(severity Severity, format string, args ...any) {
	gl.Log(nil, fmt.Sprintf(format, args...), severity)
}

func (gl *gcpLogger) Debugf(l Labeler, format string, args ...any) {
	gl.Log(l, fmt.Sprintf(format, args...), Debug)
}

func (gl *gcpLogger) Infof(l Labeler, format string, args ...any) {
	gl.Log(l, fmt.Sprintf(format, args...), Info)
}

func (gl *gcpLogger) Noticef(l Labeler, format string, args ...any) {
	gl.Log(l, fmt.Sprintf(format, args...), Notice)
}

func (gl *gcpLogger) Warningf(l Labeler, format string, args ...any) {
	gl.Log(l, fmt.Sprintf(format, args...), Warning)
}

func (gl *gcpLogger) Errorf(l Labeler, format string, args ...any) {
	gl.Log(l, fmt.Sprintf(format, args...), Error)
}

func (gl *gcpLogger) Criticalf(l Labeler, format string, args ...any) {
	gl.Log(l, fmt.Sprintf(format, args...), Critical)
}
