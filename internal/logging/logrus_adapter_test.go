package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	assert.NotNil(t, NewLogrusAdapter("debug", "json"))
	assert.NotNil(t, NewLogrusAdapter("not-a-level", "text"))
	assert.NotNil(t, NewLogrusAdapterFromLogger(nil))
}

func TestMemoryLoggerCapturesEntries(t *testing.T) {
	logger := NewMemoryLogger()

	logger.Info("pipeline started", Field{Key: "count", Value: 3})
	logger.WithError(errors.New("boom")).WithField("batch", 2).Warn("batch failed")

	entries := logger.Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "pipeline started", entries[0].Message)

	assert.Equal(t, "WARN", entries[1].Level)
	assert.EqualError(t, entries[1].Error, "boom")
	require.Len(t, entries[1].Fields, 1)
	assert.Equal(t, "batch", entries[1].Fields[0].Key)

	assert.True(t, logger.HasEntry("WARN", "batch failed"))
	assert.False(t, logger.HasEntry("ERROR", "batch failed"))
}

func TestNopLoggerIsSafe(t *testing.T) {
	logger := Nop()
	logger.WithError(errors.New("ignored")).Error("discarded")
	logger.WithFields(Field{Key: "k", Value: "v"}).Debug("discarded")
}
