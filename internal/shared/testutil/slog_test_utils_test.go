package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("fetched statcast", slog.String("date", "2024-06-01"))
		logger.Error("delivery failed", slog.Int("code", 535))

		require.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("fetched"))
		assert.True(t, handler.ContainsAttr("date", "2024-06-01"))
		assert.True(t, handler.ContainsAttr("code", int64(535)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
		assert.Equal(t, 4, handler.Count())
	})

	t.Run("keeps With attributes and shares the store", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		child := logger.With(slog.String("component", "report"))
		child.WithGroup("pdf").Info("written", slog.Int("pages", 3))
		logger.Info("root")

		records := handler.GetRecords()
		require.Len(t, records, 2)
		assert.Equal(t, "report", records[0].Attrs["component"])
		assert.Equal(t, int64(3), records[0].Attrs["pdf.pages"])
		assert.NotContains(t, records[1].Attrs, "component")
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		require.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})
}
