package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes gorm's output through slog.
type GormLogger struct {
	log           *slog.Logger
	SlowThreshold time.Duration
	LogLevel      logger.LogLevel
}

func NewGormLogger(log *slog.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		log:           log.With("component", "gorm"),
		SlowThreshold: slowThreshold,
		LogLevel:      logger.Warn,
	}
}

// LogMode implements logger.Interface
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs failed and slow statements; everything else only at Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.ErrorContext(ctx, "Database query failed",
			"error", err, "sql", sql, "duration", elapsed, "rows_affected", rows)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn:
		sql, rows := fc()
		l.log.WarnContext(ctx, "Slow query detected",
			"sql", sql, "duration", elapsed, "rows_affected", rows, "threshold", l.SlowThreshold)
	case l.LogLevel >= logger.Info:
		sql, rows := fc()
		l.log.DebugContext(ctx, "Database query", "sql", sql, "duration", elapsed, "rows_affected", rows)
	}
}
