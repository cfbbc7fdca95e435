package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func sqlFunc() (string, int64) {
	return `SELECT * FROM "receipts" WHERE barcode_id = 'RCP-2024-000001'`, 1
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		elapsed   time.Duration
		err       error
		wantMsg   string
		wantLevel zapcore.Level
	}{
		{"query error", gormlogger.Warn, 0, errors.New("connection reset"), "SQL Error", zapcore.ErrorLevel},
		{"slow query", gormlogger.Warn, time.Second, nil, "Slow SQL", zapcore.WarnLevel},
		{"normal query", gormlogger.Info, 0, nil, "SQL Query", zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level, 200*time.Millisecond)

			gl.Trace(WithRequestID(context.Background(), "req-9"), time.Now().Add(-tt.elapsed), sqlFunc, tt.err)

			entries := recorded.All()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, tt.wantMsg, entries[0].Message)
				assert.Equal(t, tt.wantLevel, entries[0].Level)
				assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
				assert.Equal(t, "gorm", entries[0].LoggerName)
			}
		})
	}
}

func TestGormLogger_Trace_Suppressed(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	NewGormLogger(zap.New(core), gormlogger.Info, 0).
		Trace(context.Background(), time.Now(), sqlFunc, gormlogger.ErrRecordNotFound)
	NewGormLogger(zap.New(core), gormlogger.Silent, 0).
		Trace(context.Background(), time.Now(), sqlFunc, errors.New("boom"))
	NewGormLogger(zap.New(core), gormlogger.Warn, 0).
		Trace(context.Background(), time.Now().Add(-time.Hour), sqlFunc, nil)

	assert.Zero(t, recorded.Len())
}

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info, 0)
	changed := gl.LogMode(gormlogger.Error).(*GormLogger)

	assert.Equal(t, gormlogger.Info, gl.level)
	assert.Equal(t, gormlogger.Error, changed.level)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
