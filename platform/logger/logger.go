// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// AgentIDKey is the context key for the authenticated sales agent ID
	AgentIDKey contextKey = "agent_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and agent_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if agentID, ok := ctx.Value(AgentIDKey).(string); ok && agentID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("agent_id", agentID)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// SyncFailure logs a follow-up cache synchronization failure for one lead.
func (l *Logger) SyncFailure(leadID string, err error) {
	l.Error("followup_sync_failure",
		slog.String("lead_id", leadID),
		slog.String("error", err.Error()),
	)
}

// ConflictDecision logs the outcome of a lead conflict resolution.
func (l *Logger) ConflictDecision(phone, outcome, agentID string) {
	l.Info("lead_conflict_decision",
		slog.String("phone", phone),
		slog.String("outcome", outcome),
		slog.String("agent_id", agentID),
	)
}

// NotificationEvent logs a notification dispatch attempt.
func (l *Logger) NotificationEvent(agentID string, leads int, success bool, reason string) {
	if success {
		l.Info("notification_event",
			slog.String("agent_id", agentID),
			slog.Int("leads", leads),
			slog.Bool("success", success),
		)
	} else {
		l.Warn("notification_event",
			slog.String("agent_id", agentID),
			slog.Int("leads", leads),
			slog.Bool("success", success),
			slog.String("reason", reason),
		)
	}
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
