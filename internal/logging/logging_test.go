package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    logrus.Level
	}{
		{name: "verbose enables debug", verbose: true, want: logrus.DebugLevel},
		{name: "default is warn", verbose: false, want: logrus.WarnLevel},
	}

	orig := logrus.GetLevel()
	defer logrus.SetLevel(orig)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Setup(tt.verbose)
			assert.Equal(t, tt.want, logrus.GetLevel())
		})
	}
}

func TestComponentScopesEntry(t *testing.T) {
	entry := Component("cli")
	assert.Equal(t, "cli", entry.Data["component"])
}
