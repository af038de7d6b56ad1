// Package logger 基于 zerolog 提供全局日志实例，并把当前 span 的 trace_id/span_id 注入到每条日志中。
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 日志配置
type Options struct {
	Level  string      `yaml:"level"`
	Format string      `yaml:"format"` // json | console
	File   FileOptions `yaml:"file"`
}

// FileOptions 滚动日志文件配置，Path 为空时不写文件
type FileOptions struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

var base atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	base.Store(&l)
}

// Init 根据配置重建全局 logger，返回的 io.Closer 用于关停时刷新日志文件
func Init(opts Options, serviceName string) io.Closer {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var stdout io.Writer = os.Stdout
	if opts.Format == "console" {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}

	writers := []io.Writer{stdout}
	var closer io.Closer = nopCloser{}
	if opts.File.Path != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
		}
		writers = append(writers, rotating)
		closer = rotating
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	base.Store(&l)
	return closer
}

// L 返回不带请求上下文的全局 logger
func L() *zerolog.Logger {
	return base.Load()
}

// Ctx 返回带有链路信息的 logger
func Ctx(ctx context.Context) *zerolog.Logger {
	l := base.Load()
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	withTrace := l.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
	return &withTrace
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
