package oteladapters_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymill/readmodel-go/readmodel/oteladapters"
)

// recordingHandler captures slog records for assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)

	return nil
}

func (h *recordingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(_ string) slog.Handler      { return h }

func Test_SlogBridgeLogger_ForwardsAllLevels(t *testing.T) {
	handler := &recordingHandler{}
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	logger.DebugContext(ctx, "debug message", "key", "value")
	logger.InfoContext(ctx, "info message")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")

	require.Len(t, handler.records, 4)
	assert.Equal(t, slog.LevelDebug, handler.records[0].Level)
	assert.Equal(t, "debug message", handler.records[0].Message)
	assert.Equal(t, slog.LevelInfo, handler.records[1].Level)
	assert.Equal(t, slog.LevelWarn, handler.records[2].Level)
	assert.Equal(t, slog.LevelError, handler.records[3].Level)
}

func Test_SlogBridgeLogger_PassesArgsAsAttributes(t *testing.T) {
	handler := &recordingHandler{}
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)

	logger.InfoContext(context.Background(), "dispatch completed", "query_type", "PlayersByTeam", "total_count", 57)

	require.Len(t, handler.records, 1)

	attrs := make(map[string]slog.Value)
	handler.records[0].Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value
		return true
	})

	require.Contains(t, attrs, "query_type")
	assert.Equal(t, "PlayersByTeam", attrs["query_type"].String())
	require.Contains(t, attrs, "total_count")
	assert.Equal(t, int64(57), attrs["total_count"].Int64())
}

func Test_NewSlogBridgeLogger_Construction(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("readmodel-test")

	assert.NotNil(t, logger)
}
