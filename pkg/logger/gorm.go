package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// maxSQLLength caps logged statements to keep log lines bounded
const maxSQLLength = 1000

// GormLogger routes GORM's logging through zap
type GormLogger struct {
	ZapLogger     *zap.Logger
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

// NewGormLogger creates a GORM logger from the application log level
// and slow query threshold. Debug enables per-query logging; an unknown
// level falls back to warn.
func NewGormLogger(zapLogger *zap.Logger, slowQuerySeconds float64, logLevel string) *GormLogger {
	return &GormLogger{
		ZapLogger:     zapLogger,
		SlowThreshold: time.Duration(slowQuerySeconds * float64(time.Second)),
		LogLevel:      gormLevel(logLevel),
	}
}

func gormLevel(logLevel string) gormlogger.LogLevel {
	if strings.EqualFold(logLevel, "silent") {
		return gormlogger.Silent
	}

	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return gormlogger.Warn
	}
	switch {
	case lvl <= zap.DebugLevel:
		return gormlogger.Info
	case lvl <= zap.WarnLevel:
		// Info level apps still only want slow queries and errors from GORM
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		WithContext(ctx, l.ZapLogger).Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		WithContext(ctx, l.ZapLogger).Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		WithContext(ctx, l.ZapLogger).Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface. Integrity constraint failures
// are logged at warn since the repository turns them into client errors.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	// Truncate SQL if too long (prevent log flooding)
	truncated := false
	if len(sql) > maxSQLLength {
		sql = sql[:maxSQLLength] + "..."
		truncated = true
	}

	// Get logger with context (includes request_id if available)
	logger := WithContext(ctx, l.ZapLogger)

	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if truncated {
		fields = append(fields, zap.Bool("sql_truncated", true))
	}

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Lookups report absence to their callers
	case isConstraintViolation(err):
		if l.LogLevel >= gormlogger.Warn {
			logger.Warn("gorm constraint violation", append(fields, zap.Error(err))...)
		}
		return
	default:
		logger.Error("gorm query error", append(fields, zap.Error(err))...)
		return
	}

	// Log slow queries as warnings
	if l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn {
		fields = append(fields, zap.Duration("threshold", l.SlowThreshold))
		logger.Warn("gorm slow query", fields...)
		return
	}

	if l.LogLevel >= gormlogger.Info {
		logger.Info("gorm query", fields...)
	}
}

// isConstraintViolation reports whether err is an integrity constraint
// failure, translated or straight from the driver.
func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	// SQLSTATE class 23 is integrity constraint violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}

	return strings.Contains(err.Error(), "constraint failed")
}
