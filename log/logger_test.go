package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestFromCtx_WithoutLogger(t *testing.T) {
	logger := FromCtx(context.Background())
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestNewContextWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer

	ctx, flush := NewContextWithWriter(context.Background(), &buf, false)
	defer flush()
	assert.Equal(t, zerolog.InfoLevel, FromCtx(ctx).GetLevel())

	debugCtx, debugFlush := NewContextWithWriter(context.Background(), &buf, true)
	defer debugFlush()
	assert.Equal(t, zerolog.DebugLevel, FromCtx(debugCtx).GetLevel())
}

func TestComponent_TagsAndChains(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	Component(ctx, "ingest").Warn().Str("file", "a.txt").Msg("skipped")

	assert.Contains(t, buf.String(), `"component":"ingest"`)
	assert.Contains(t, buf.String(), `"file":"a.txt"`)
	assert.Contains(t, buf.String(), `"message":"skipped"`)
}

func TestComponent_WithoutLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Component(context.Background(), "engine").Debug().Msg("dropped")
	})
}
