package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func TestWithContext(t *testing.T) {
	t.Run("should round-trip the logger through the context", func(t *testing.T) {
		log, _ := observedLogger()
		ctx := WithContext(context.Background(), log)
		assert.Same(t, log, FromContext(ctx))
	})

	t.Run("should return a usable no-op logger when absent", func(t *testing.T) {
		log := FromContext(context.Background())
		require.NotNil(t, log)
		log.Info("does not panic")
	})
}

func TestScopedFields(t *testing.T) {
	t.Run("should store the request ID and tag the logger", func(t *testing.T) {
		log, recorded := observedLogger()
		ctx, tagged := WithRequestID(context.Background(), log, "req-1")

		assert.Equal(t, "req-1", GetRequestID(ctx))
		tagged.Info("hello")
		assert.Equal(t, "req-1", recorded.All()[0].ContextMap()["request_id"])
	})

	t.Run("should store the tenant ID and tag the logger", func(t *testing.T) {
		log, recorded := observedLogger()
		ctx, tagged := WithTenantID(context.Background(), log, "tenant-1")

		assert.Equal(t, "tenant-1", GetTenantID(ctx))
		tagged.Info("hello")
		assert.Equal(t, "tenant-1", recorded.All()[0].ContextMap()["tenant_id"])
	})

	t.Run("should store the user ID and tag the logger", func(t *testing.T) {
		log, recorded := observedLogger()
		ctx, tagged := WithUserID(context.Background(), log, "user-1")

		assert.Equal(t, "user-1", GetUserID(ctx))
		tagged.Info("hello")
		assert.Equal(t, "user-1", recorded.All()[0].ContextMap()["user_id"])
	})

	t.Run("should chain so later loggers carry earlier fields", func(t *testing.T) {
		log, recorded := observedLogger()
		ctx, tagged := WithRequestID(context.Background(), log, "req-1")
		ctx, tagged = WithTenantID(ctx, tagged, "tenant-1")

		tagged.Info("hello")
		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "tenant-1", fields["tenant_id"])
		assert.Same(t, tagged, FromContext(ctx))
	})

	t.Run("should return empty strings for missing values", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetRequestID(ctx))
		assert.Empty(t, GetTenantID(ctx))
		assert.Empty(t, GetUserID(ctx))
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("should log through the context's logger", func(t *testing.T) {
		log, recorded := observedLogger()
		ctx := WithContext(context.Background(), log)

		L(ctx).Info("processing sale")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "processing sale", logs[0].Message)
	})

	t.Run("should inject trace and span IDs from an active span", func(t *testing.T) {
		log, recorded := observedLogger()
		tp := sdktrace.NewTracerProvider()
		t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

		ctx, span := tp.Tracer("test").Start(WithContext(context.Background(), log), "sale.create")
		defer span.End()

		L(ctx).Info("inside span")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	})

	t.Run("should inject identity fields stored in the context", func(t *testing.T) {
		log, recorded := observedLogger()
		ctx := WithContext(context.Background(), log)
		ctx = context.WithValue(ctx, RequestIDKey, "req-9")
		ctx = context.WithValue(ctx, TenantIDKey, "tenant-9")
		ctx = context.WithValue(ctx, UserIDKey, "user-9")

		L(ctx).Warn("suspicious")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "tenant-9", fields["tenant_id"])
		assert.Equal(t, "user-9", fields["user_id"])
	})

	t.Run("should omit trace fields without an active span", func(t *testing.T) {
		log, recorded := observedLogger()
		L(WithContext(context.Background(), log)).Info("no span")

		fields := recorded.All()[0].ContextMap()
		assert.NotContains(t, fields, "trace_id")
		assert.NotContains(t, fields, "span_id")
	})

	t.Run("should carry extra fields added with With", func(t *testing.T) {
		log, recorded := observedLogger()
		ctx := WithContext(context.Background(), log)

		L(ctx).With(zap.String("document", "S-0001")).Error("rejected")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "S-0001", fields["document"])
	})

	t.Run("should not panic on a bare context", func(t *testing.T) {
		L(context.Background()).Debug("nothing attached")
	})

	t.Run("should expose the enriched zap logger", func(t *testing.T) {
		log, recorded := observedLogger()
		ctx := context.WithValue(WithContext(context.Background(), log), RequestIDKey, "req-2")

		L(ctx).Zap().Info("direct")

		assert.Equal(t, "req-2", recorded.All()[0].ContextMap()["request_id"])
	})
}
