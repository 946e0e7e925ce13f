// Package logging configures the process-wide structured logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Configure sets up logrus for CLI/daemon use: text formatting with full
// timestamps, level controlled by the PARACAS_LOG env var (defaults to
// info, or debug when verbose is set). Output always goes to stderr; a
// spawned daemon's stderr is redirected into its job log file.
func Configure(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	if envLevel := os.Getenv("PARACAS_LOG"); envLevel != "" {
		if parsed, err := logrus.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}
	log.SetLevel(level)
	return log
}
