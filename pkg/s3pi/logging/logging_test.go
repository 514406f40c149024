package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf})

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Verbose: true, Writer: &buf})

	logger.Debug("shown")

	assert.Contains(t, buf.String(), "shown")
}

func TestForComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := ForComponent(New(Config{Writer: &buf}), "planner")

	logger.Info("message")

	assert.Contains(t, buf.String(), "planner")
}

func TestDiscard(t *testing.T) {
	// Must not panic; output goes nowhere.
	Discard().Error("dropped")
}
