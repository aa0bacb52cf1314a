package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(&buf, false)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log = NewWithWriter(&buf, true)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error("discarded")
	assert.False(t, log.IsLevelEnabled(logrus.ErrorLevel))
}
