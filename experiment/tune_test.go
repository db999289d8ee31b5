package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/lowrank/pkg/log"
)

func TestTune(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Methods = []string{MethodRFF, MethodICD}
	cfg.RankRange = []int{2, 6}
	logger, _ := log.NewTestLogger(log.LevelInfo)

	results, err := NewRunner(cfg, WithLogger(logger)).Tune(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, res := range results {
		assert.Equal(t, cfg.Methods[i], res.Method)
		assert.Equal(t, cfg.Tune.Trials, res.Trials)
		assert.GreaterOrEqual(t, res.Rank, 2)
		assert.LessOrEqual(t, res.Rank, 6)
		assert.GreaterOrEqual(t, res.Lambda, cfg.Tune.LambdaMin)
		assert.LessOrEqual(t, res.Lambda, cfg.Tune.LambdaMax)
		assert.GreaterOrEqual(t, res.RMSEValidation, 0.0)
		assert.GreaterOrEqual(t, res.RMSETest, 0.0)
	}
	assert.True(t, logger.ContainsMessage("Tuning completed"))
	assert.False(t, logger.ContainsMessage("Study best value differs"))
}

func TestTune_Cancelled(t *testing.T) {
	cfg := smallConfig(t)
	logger, _ := log.NewTestLogger(log.LevelError)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewRunner(cfg, WithLogger(logger)).Tune(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
