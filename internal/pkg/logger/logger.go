package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOption 日志初始化参数
type LogOption struct {
	Format   string // "console" 或 "json"
	LogDir   string // 日志目录，为空时只输出到 stdout
	Level    string // debug / info / warn / error
	Compress bool   // 是否压缩滚动后的旧日志
}

const (
	defaultFileName   = "indexer.log"
	defaultMaxSizeMB  = 512
	defaultMaxBackups = 10
	defaultMaxAgeDays = 7
)

var sugar atomic.Pointer[zap.SugaredLogger]

func init() {
	sugar.Store(zap.NewNop().Sugar())
}

// Init 按配置初始化全局 logger，可重复调用（后一次覆盖前一次）
func Init(opt LogOption) error {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(defaultString(opt.Level, "info")))); err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if opt.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if opt.LogDir != "" {
		if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
			return err
		}
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(opt.LogDir, defaultFileName),
			MaxSize:    defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAge:     defaultMaxAgeDays,
			Compress:   opt.Compress,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	sugar.Store(l.Sugar())
	return nil
}

// Sync 刷新缓冲日志，进程退出前调用
func Sync() {
	_ = sugar.Load().Sync()
}

func Debugf(template string, args ...interface{}) {
	sugar.Load().Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	sugar.Load().Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	sugar.Load().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	sugar.Load().Errorf(template, args...)
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
