// Package logging builds the zap loggers used across the layer.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
)

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Config describes the logger to build.
type Config struct {
	Level   string     `yaml:"level"`
	Console bool       `yaml:"console"`
	File    FileConfig `yaml:"file"`
}

// Logger pairs a zap logger with the atomic level driving its cores, so
// verbosity can be adjusted after construction.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// New builds a logger from the config. With neither console output nor
// a file path it degrades to a no-op logger.
func New(cfg Config) *Logger {
	lvl := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	var cores []zapcore.Core

	if cfg.Console {
		consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      zapcore.CapitalColorLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), lvl))
	}

	if cfg.File.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
			LocalTime:  true,
		}
		fileEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), lvl))
	}

	if len(cores) == 0 {
		return Nop()
	}
	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...), zap.AddCaller()),
		level:  lvl,
	}
}

// SetLevel adjusts verbosity on all cores.
func (l *Logger) SetLevel(level webifc.LogLevel) {
	l.level.SetLevel(ZapLevel(level))
}

// ZapLevel maps an engine log level onto zap's scale.
func ZapLevel(level webifc.LogLevel) zapcore.Level {
	switch level {
	case webifc.LogLevelDebug:
		return zapcore.DebugLevel
	case webifc.LogLevelInfo:
		return zapcore.InfoLevel
	case webifc.LogLevelWarn:
		return zapcore.WarnLevel
	case webifc.LogLevelError:
		return zapcore.ErrorLevel
	}
	// LogLevelOff: suppress everything zap can express
	return zapcore.FatalLevel + 1
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() {
	_ = l.Logger.Sync()
}
