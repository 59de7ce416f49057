package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Opts{Env: "production", Output: &buf})

	log.Info("dispatch finished", "processed", 3)

	assert.Contains(t, buf.String(), `"message":"dispatch finished"`)
	assert.Contains(t, buf.String(), `"processed":3`)
}

func TestNew_ProductionSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Opts{Env: "production", Output: &buf})

	log.Debug("noisy")

	assert.Empty(t, buf.String())
}

func TestFatal_LogsBeforeExit(t *testing.T) {
	var buf bytes.Buffer
	prevLogger := slog.Default()
	slog.SetDefault(New(Opts{Env: "production", Output: &buf}))
	defer slog.SetDefault(prevLogger)

	code := -1
	prevExit := exit
	exit = func(c int) {
		code = c
		assert.Contains(t, buf.String(), `"message":"Failed to apply migrations"`)
	}
	defer func() { exit = prevExit }()

	Fatal("Failed to apply migrations", "error", "relation exists")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "relation exists")
}
