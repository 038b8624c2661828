// Package logging configures the process-wide logrus logger for the
// taskloop CLI: formatter and level selection, plus component-scoped
// entries so every log line carries its origin.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger. Verbose enables debug
// level; otherwise only warnings and errors are shown.
func Setup(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// Component returns an entry scoped to a component name.
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
