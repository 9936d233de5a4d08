package dao

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/fast-note-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// slowThreshold 慢查询阈值
const slowThreshold = 200 * time.Millisecond

// gormLogger 将 gorm 日志输出到 zap
type gormLogger struct {
	zl    *zap.Logger
	level gormlogger.LogLevel
}

func newGormLogger(zl *zap.Logger, debug bool) gormlogger.Interface {
	if zl == nil {
		zl = zap.NewNop()
	}
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return &gormLogger{zl: zl.Named("gorm"), level: level}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	n := *l
	n.level = level
	return &n
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.zl.Sugar().Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.zl.Sugar().Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.zl.Sugar().Errorf(msg, args...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	// 记录未找到不是错误
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.zl.Error("sql error",
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration(logger.FieldDuration, elapsed),
			zap.Error(err),
		)
	case elapsed > slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.zl.Warn("slow sql",
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration(logger.FieldDuration, elapsed),
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.zl.Info("sql",
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration(logger.FieldDuration, elapsed),
		)
	}
}
