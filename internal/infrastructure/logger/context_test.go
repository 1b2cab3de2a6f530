package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newCaptureLogger returns a JSON logger writing into buf.
func newCaptureLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey: "msg",
		LevelKey:   "level",
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(buf), zapcore.DebugLevel)
	return zap.New(core)
}

func TestWithContext(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.NotNil(t, retrieved)
}

func TestFromContext_NotFound(t *testing.T) {
	logger := FromContext(context.Background())

	// Should return a no-op logger
	assert.NotNil(t, logger)
}

func TestWithRequestID(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

	assert.NotNil(t, enriched)
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestWithTenantID(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx, enriched := WithTenantID(context.Background(), logger, "tenant-42")

	assert.NotNil(t, enriched)
	assert.Equal(t, "tenant-42", GetTenantID(ctx))
}

func TestWithActor(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx, enriched := WithActor(context.Background(), logger, "cashier-1")

	assert.NotNil(t, enriched)
	assert.Equal(t, "cashier-1", GetActor(ctx))
}

func TestGetters_NotFound(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
	assert.Empty(t, GetActor(ctx))
}

func TestContextKeys_AreDistinct(t *testing.T) {
	assert.NotEqual(t, LoggerKey, RequestIDKey)
	assert.NotEqual(t, RequestIDKey, TenantIDKey)
	assert.NotEqual(t, TenantIDKey, ActorKey)
	assert.NotEqual(t, LoggerKey, ActorKey)
}

func TestChainedEnrichment(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := context.Background()
	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, logger = WithTenantID(ctx, logger, "tenant-1")
	ctx, _ = WithActor(ctx, logger, "admin1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "tenant-1", GetTenantID(ctx))
	assert.Equal(t, "admin1", GetActor(ctx))
}

func TestContextLogger_InjectsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := newCaptureLogger(&buf)

	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "req-abc")
	ctx = context.WithValue(ctx, TenantIDKey, "tenant-xyz")
	ctx = context.WithValue(ctx, ActorKey, "supervisor-2")
	ctx = WithContext(ctx, base)

	L(ctx).Info("payment applied")

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-abc"`)
	assert.Contains(t, output, `"tenant_id":"tenant-xyz"`)
	assert.Contains(t, output, `"actor":"supervisor-2"`)
	assert.Contains(t, output, "payment applied")
}

func TestContextLogger_OmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	base := newCaptureLogger(&buf)

	ctx := WithContext(context.Background(), base)
	L(ctx).Info("scan finished")

	output := buf.String()
	assert.NotContains(t, output, `"request_id"`)
	assert.NotContains(t, output, `"tenant_id"`)
	assert.NotContains(t, output, `"actor"`)
}

func TestContextLogger_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	base := newCaptureLogger(&buf)

	ctx := context.WithValue(context.Background(), TenantIDKey, "tenant-1")
	WithLogger(ctx, base).Warn("quote is stale")

	output := buf.String()
	assert.Contains(t, output, `"tenant_id":"tenant-1"`)
	assert.Contains(t, output, "quote is stale")
}

func TestContextLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := newCaptureLogger(&buf)

	ctx := WithContext(context.Background(), base)
	L(ctx).With(zap.String("contract_number", "GC-2026-0001")).Info("contract created")

	output := buf.String()
	assert.Contains(t, output, `"contract_number":"GC-2026-0001"`)
}

func TestContextLogger_NilLoggerDoesNotPanic(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() {
		cl.Info("no-op")
	})
}

func TestContextLogger_ZapAndSugar(t *testing.T) {
	var buf bytes.Buffer
	base := newCaptureLogger(&buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-9")
	ctx = WithContext(ctx, base)

	L(ctx).Zap().Info("direct zap")
	L(ctx).Sugar().Infow("sugared")

	output := buf.String()
	assert.Contains(t, output, "direct zap")
	assert.Contains(t, output, "sugared")
}
