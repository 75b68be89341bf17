package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey     contextKey = "logger"
	requestIDKey  contextKey = "request_id"
	supplierIDKey contextKey = "supplier_id"
	subjectKey    contextKey = "subject"
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the attached logger, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithSupplierID stores the supplier an operation acts on
func WithSupplierID(ctx context.Context, supplierID string) context.Context {
	return context.WithValue(ctx, supplierIDKey, supplierID)
}

// WithSubject stores the authenticated admin subject
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// GetRequestID returns the request id, if any
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// GetSupplierID returns the supplier id, if any
func GetSupplierID(ctx context.Context) string {
	v, _ := ctx.Value(supplierIDKey).(string)
	return v
}

// GetSubject returns the admin subject, if any
func GetSubject(ctx context.Context) string {
	v, _ := ctx.Value(subjectKey).(string)
	return v
}

// ContextFields returns trace and request correlation fields found in ctx
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if v := GetRequestID(ctx); v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v := GetSupplierID(ctx); v != "" {
		fields = append(fields, zap.String("supplier_id", v))
	}
	if v := GetSubject(ctx); v != "" {
		fields = append(fields, zap.String("subject", v))
	}
	return fields
}

// L returns the context's logger enriched with its correlation fields.
//
//	logger.L(ctx).Info("Supplier synced", zap.Int("created", n))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds ctx's correlation fields to logger
func Enrich(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
