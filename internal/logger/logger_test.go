package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info().Msg("quiet")
	log.Warn().Str("k", "v").Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, `"message":"loud"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestNewWithWriter_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "chatty")

	log.Debug().Msg("debug")
	log.Info().Msg("info")

	assert.NotContains(t, buf.String(), `"message":"debug"`)
	assert.Contains(t, buf.String(), `"message":"info"`)
}
