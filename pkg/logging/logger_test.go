package logging_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/pricewatch/pkg/logging"
)

func TestTestLoggerCapturesOutput(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Info().Str("provider", "openrouter").Msg("evaluated provider")

	tl.AssertContains(t, "evaluated provider")
	tl.AssertContains(t, `"provider":"openrouter"`)
}

func TestFromContextDefault(t *testing.T) {
	assert.NotNil(t, logging.FromContext(context.Background()))
	assert.NotNil(t, logging.FromContext(nil)) //nolint:staticcheck
}

func TestWithLoggerRoundTrip(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	logging.FromContext(ctx).Info().Msg("through context")

	tl.AssertContains(t, "through context")
}

func TestWithModelAndProvider(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithModel(ctx, "gpt-4o")
	ctx = logging.WithProvider(ctx, "openrouter")

	logging.Ctx(ctx).Info().Msg("scoped")

	tl.AssertContains(t, `"model_id":"gpt-4o"`)
	tl.AssertContains(t, `"provider":"openrouter"`)
}

func TestPackageLevelStarters(t *testing.T) {
	var buf bytes.Buffer
	previousLogger := *logging.Default()
	previousLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logging.SetDefault(logging.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() {
		logging.SetDefault(previousLogger)
		zerolog.SetGlobalLevel(previousLevel)
	})

	logging.Debug().Str("model_id", "gpt-4o").Msg("evaluating model")
	logging.Err(errors.New("snapshot unreadable")).Msg("skipping snapshot")

	out := buf.String()
	assert.Contains(t, out, "evaluating model")
	assert.Contains(t, out, `"model_id":"gpt-4o"`)
	assert.Contains(t, out, "snapshot unreadable")
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNopLogger()
	logger.Error().Msg("discarded")
	assert.NotNil(t, logger)
}
