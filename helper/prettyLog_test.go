package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedHandler(level slog.Level) (*PrettyHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: level},
	})
	return handler, &buf
}

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Handler and inner logger are initialized", func(t *testing.T) {
		handler, _ := newBufferedHandler(slog.LevelInfo)

		require.NotNil(t, handler)
		assert.NotNil(t, handler.Handler)
		assert.NotNil(t, handler.l)
	})

	t.Run("Empty options are accepted", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		assert.NotNil(t, handler)
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("Each level renders its own prefix", func(t *testing.T) {
		levels := map[slog.Level]string{
			slog.LevelDebug: "DEBUG:",
			slog.LevelInfo:  "INFO:",
			slog.LevelWarn:  "WARN:",
			slog.LevelError: "ERROR:",
		}

		for level, prefix := range levels {
			handler, buf := newBufferedHandler(slog.LevelDebug)
			record := slog.NewRecord(time.Now(), level, "message de test", 0)

			err := handler.Handle(ctx, record)

			require.NoError(t, err)
			assert.Contains(t, buf.String(), prefix)
			assert.Contains(t, buf.String(), "message de test")
		}
	})

	t.Run("Attributes come out as indented JSON", func(t *testing.T) {
		handler, buf := newBufferedHandler(slog.LevelInfo)
		record := slog.NewRecord(time.Now(), slog.LevelInfo, "session stored", 0)
		record.AddAttrs(
			slog.String("session_id", "abc-123"),
			slog.Int("num_entities", 7),
		)

		err := handler.Handle(ctx, record)

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "session_id")
		assert.Contains(t, output, "abc-123")
		assert.Contains(t, output, "num_entities")
		assert.Contains(t, output, "7")
	})

	t.Run("No attributes renders an empty object", func(t *testing.T) {
		handler, buf := newBufferedHandler(slog.LevelInfo)
		record := slog.NewRecord(time.Now(), slog.LevelInfo, "rien de plus", 0)

		err := handler.Handle(ctx, record)

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "{}")
	})

	t.Run("Timestamp renders as bracketed clock time", func(t *testing.T) {
		handler, buf := newBufferedHandler(slog.LevelInfo)
		record := slog.NewRecord(time.Now(), slog.LevelInfo, "horodatage", 0)

		err := handler.Handle(ctx, record)

		require.NoError(t, err)
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String())
	})
}
