package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/signalhouse/creatorstats/internal/config"
)

// Logger represents a logger instance
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

// Level represents a log level
type Level = logrus.Level

// Log levels
const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

// NewLogger creates a new configured logger instance
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(config.GetLogLevel())
	return logger
}

// NewJobLogger creates a logger with a job field attached to every entry
func NewJobLogger(jobName string) *logrus.Entry {
	return NewLogger().WithField("job", jobName)
}

// NewCLILogger creates a plain-text logger for interactive tools
func NewCLILogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(config.GetLogLevel())
	return logger
}
