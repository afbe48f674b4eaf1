package logger

import (
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogsFiltersByLevel(t *testing.T) {
	InitLogger(logging.ERROR)
	logBuffer = nil

	Debug("debug entry")
	Info("info entry")
	Warning("warning entry")

	logs := GetLogs(10, "WARNING")
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0], "warning entry")

	logs = GetLogs(10, "DEBUG")
	assert.Len(t, logs, 3)
	// Newest first.
	assert.Contains(t, logs[0], "warning entry")
}

func TestLogBufferIsBounded(t *testing.T) {
	InitLogger(logging.ERROR)
	logBuffer = nil

	for i := 0; i < maxLogBufferSize+5; i++ {
		addToBuffer("INFO", "entry")
	}
	assert.Len(t, logBuffer, maxLogBufferSize)
}
