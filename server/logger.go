package server

import (
	"context"
	"encoding/json"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/logger"
	"github.com/viant/mcp-protocol/schema"
)

// Logger emits MCP logging notifications honoring the client-set level.
type Logger struct {
	name     string
	level    *schema.LoggingLevel
	notifier transport.Notifier
}

// Logger creates a named child logger sharing level and channel.
func (l *Logger) Logger(name string) logger.Logger {
	return &Logger{
		name:     name,
		level:    l.level,
		notifier: l.notifier,
	}
}

func (l *Logger) log(ctx context.Context, level schema.LoggingLevel, data any) error {
	if l.level == nil || l.level.Ordinal() > level.Ordinal() {
		// below the client-requested level
		return nil
	}
	notification := &jsonrpc.Notification{Method: schema.MethodNotificationMessage}
	params := schema.LoggingMessageNotificationParams{
		Level:  level,
		Logger: &l.name,
		Data:   data,
	}
	var err error
	if notification.Params, err = json.Marshal(params); err != nil {
		return err
	}
	return l.notifier.Notify(ctx, notification)
}

func (l *Logger) Debug(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.LoggingLevelDebug, data)
}

func (l *Logger) Info(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.LoggingLevelInfo, data)
}

func (l *Logger) Notice(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.LoggingLevelNotice, data)
}

func (l *Logger) Warning(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.LoggingLevelWarning, data)
}

func (l *Logger) Error(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.LoggingLevelError, data)
}

func (l *Logger) Critical(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.LoggingLevelCritical, data)
}

func (l *Logger) Alert(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.LoggingLevelAlert, data)
}

func (l *Logger) Emergency(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.LoggingLevelEmergency, data)
}

// NewLogger creates a notification-backed logger.
func NewLogger(name string, level *schema.LoggingLevel, notifier transport.Notifier) *Logger {
	return &Logger{
		name:     name,
		level:    level,
		notifier: notifier,
	}
}
