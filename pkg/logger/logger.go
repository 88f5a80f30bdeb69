package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type requestIDKey struct{}

// New builds the process logger. "production" logs JSON with ISO8601
// timestamps, anything else logs colored console output at debug level.
func New(env string) (*zap.Logger, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

// WithRequestID stores the request id the context-aware helpers log.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Fields returns the correlation fields carried by ctx: the request id and,
// when a span is active, its trace and span ids.
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()))
	}
	return fields
}

// For returns log enriched with the correlation fields of ctx.
func For(ctx context.Context, log *zap.Logger) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	if f := Fields(ctx); len(f) > 0 {
		return log.With(f...)
	}
	return log
}

func Info(ctx context.Context, log *zap.Logger, msg string, fields ...zap.Field) {
	For(ctx, log).Info(msg, fields...)
}

func Warn(ctx context.Context, log *zap.Logger, msg string, fields ...zap.Field) {
	For(ctx, log).Warn(msg, fields...)
}

func Debug(ctx context.Context, log *zap.Logger, msg string, fields ...zap.Field) {
	For(ctx, log).Debug(msg, fields...)
}

// Error logs msg with err attached; err may be nil.
func Error(ctx context.Context, log *zap.Logger, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	For(ctx, log).Error(msg, fields...)
}
