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

// sqlLogLimit caps the length of SQL text in debug logs.
const sqlLogLimit = 200

// slogGormLogger bridges GORM's logger.Interface onto slog. SQL tracing is
// emitted at Debug; the formatting callback is skipped entirely when the
// active slog level filters Debug out.
type slogGormLogger struct{}

// LogMode is a no-op, slog owns level filtering.
func (l slogGormLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l slogGormLogger) Info(_ context.Context, msg string, args ...any) {
	slog.Info(fmt.Sprintf(msg, args...))
}

func (l slogGormLogger) Warn(_ context.Context, msg string, args ...any) {
	slog.Warn(fmt.Sprintf(msg, args...))
}

func (l slogGormLogger) Error(_ context.Context, msg string, args ...any) {
	slog.Error(fmt.Sprintf(msg, args...))
}

// Trace runs after every SQL operation. gorm.ErrRecordNotFound is the
// ordinary empty result of First() and is not treated as a query error.
func (l slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		sql, rows := fc()
		slog.Error("query failed",
			"sql", compactSQL(sql),
			"rows", rows,
			"duration", elapsed,
			"error", err,
		)
		return
	}

	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return
	}

	sql, rows := fc()
	slog.Debug("query",
		"sql", compactSQL(sql),
		"rows", rows,
		"duration", elapsed,
	)
}

// compactSQL shortens long SQL text for log output.
func compactSQL(sql string) string {
	if len(sql) <= sqlLogLimit {
		return sql
	}
	return sql[:sqlLogLimit-3] + "..."
}
