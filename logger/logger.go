package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSize = 10
	maxBack = 5
	maxAge  = 30
)

// New builds a logger writing to stderr and, when filePath is set, to a rotated file.
func New(level, filePath, serviceName string) (zerolog.Logger, error) {
	return newLogger(os.Stderr, level, filePath, serviceName)
}

func newLogger(out io.Writer, level, filePath, serviceName string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}}

	if filePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    maxSize, // megabytes
			MaxBackups: maxBack,
			MaxAge:     maxAge, // days
			Compress:   true,
		})
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", serviceName).
		Logger().
		Level(lvl), nil
}

// Resty adapts a zerolog logger to the logger interface of the resty client.
type Resty struct {
	Logger zerolog.Logger
}

func (r Resty) Errorf(format string, v ...interface{}) {
	r.Logger.Error().Msgf(format, v...)
}

func (r Resty) Warnf(format string, v ...interface{}) {
	r.Logger.Warn().Msgf(format, v...)
}

func (r Resty) Debugf(format string, v ...interface{}) {
	r.Logger.Debug().Msgf(format, v...)
}
