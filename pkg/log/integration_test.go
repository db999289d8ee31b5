package log

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoggerInterface tests the Logger interface implementation
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", ErrorCodeKey, ErrorSingularMatrix)
	testLogger.Error("error message", fmt.Errorf("solve failed"), MethodKey, "ICD")

	require.NotEmpty(t, buffer.String())
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		assert.True(t, testLogger.ContainsMessage(msg), msg)
	}

	assert.True(t, testLogger.ContainsField("key1", "value1"))
	// JSON unmarshaling converts numbers to float64
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "solve failed"))
	assert.True(t, testLogger.ContainsField(MethodKey, "ICD"))
}

// TestLoggerWith tests the With method for context-aware logging
func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "RFF",
		ComponentKey, "rff",
		RankKey, 30,
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	assert.True(t, testLogger.ContainsField(ModelNameKey, "RFF"))
	assert.True(t, testLogger.ContainsField(ComponentKey, "rff"))
	assert.True(t, testLogger.ContainsField(RankKey, 30.0))
	assert.True(t, testLogger.ContainsField(OperationKey, OperationFit))
}

// TestLoggerEnabled tests the Enabled method
func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, testLogger.Enabled(ctx, LevelInfo))
	assert.True(t, testLogger.Enabled(ctx, LevelError))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	assert.False(t, testLogger.ContainsMessage("this should not appear"))
	assert.True(t, testLogger.ContainsMessage("this should appear"))
}

func TestSweepAttributeKeys(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	testLogger.Info("combination evaluated",
		DatasetKey, "synthetic",
		MethodKey, "RFF",
		RankKey, 12,
		LambdaKey, 0.01,
		IterationKey, 3,
		RMSEKey, 0.25,
	)

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	expected := map[string]interface{}{
		DatasetKey:   "synthetic",
		MethodKey:    "RFF",
		RankKey:      12.0,
		LambdaKey:    0.01,
		IterationKey: 3.0,
		RMSEKey:      0.25,
		"level":      "INFO",
	}
	for key, want := range expected {
		assert.Equal(t, want, entry[key], key)
	}
}

// TestLoggerProviderIntegration tests the LoggerProvider interface
func TestLoggerProviderIntegration(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)

	provider.GetLogger().Info("provider test message")
	provider.GetLoggerWithName("experiment").Info("named logger message")

	out := buffer.String()
	assert.Contains(t, out, "provider test message")
	assert.Contains(t, out, "named logger message")
	assert.Contains(t, out, "experiment")

	provider.SetLevel(LevelError)
	provider.GetLogger().Info("suppressed")
	assert.NotContains(t, buffer.String(), "suppressed")
}

func TestTrailingKeyWithoutValue(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	testLogger.Info("odd fields", RankKey, 3, "dangling")

	assert.True(t, testLogger.ContainsField(badKey, "dangling"))
	assert.True(t, testLogger.ContainsField(RankKey, 3.0))
}

// TestConcurrentLogging tests thread safety of logging
func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	const goroutines, perGoroutine = 4, 5
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			child := testLogger.With("worker", id)
			for j := 0; j < perGoroutine; j++ {
				child.Info(fmt.Sprintf("goroutine %d message %d", id, j))
			}
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, goroutines*perGoroutine)
}

// BenchmarkLogging benchmarks logging performance
func BenchmarkLogging(b *testing.B) {
	testLogger, _ := NewTestLogger(LevelInfo)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		testLogger.Info("benchmark message",
			IterationKey, i,
			OperationKey, OperationPredict,
			SamplesKey, 1000,
		)
	}
}
