package utils

import (
	"fmt" // Error wrapping

	"github.com/sirupsen/logrus" // Structured logging
)

// ConfigureLogger sets the global logrus formatter and level: JSON in
// production, text with full timestamps otherwise.
func ConfigureLogger(isProd bool, level string) error {
	if isProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)
	return nil
}
