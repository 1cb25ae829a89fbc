package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = New(os.Stdout, os.Stderr)
}

// New builds a console logger that sends debug/info/warn to out and
// error/fatal/panic to errOut.
func New(out, errOut io.Writer) zerolog.Logger {
	writer := zerolog.MultiLevelWriter(
		SpecificLevelWriter{
			Writer: zerolog.ConsoleWriter{
				Out:        out,
				TimeFormat: time.RFC3339,
				NoColor:    true,
			},
			Levels: []zerolog.Level{
				zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel,
			},
		},
		SpecificLevelWriter{
			Writer: zerolog.ConsoleWriter{
				Out:        errOut,
				TimeFormat: time.RFC3339,
				NoColor:    true,
			},
			Levels: []zerolog.Level{
				zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel,
			},
		},
	)
	return zerolog.New(writer).With().Timestamp().Logger()
}

// SetOutput replaces the package logger. Used by tests to capture output.
func SetOutput(out, errOut io.Writer) {
	logger = New(out, errOut).Level(logger.GetLevel())
}

// SetLevel parses a level name ("debug", "info", ...) and applies it.
// Unknown names fall back to info.
func SetLevel(name string) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)
}

// Get returns the underlying zerolog logger for structured fields.
func Get() *zerolog.Logger {
	return &logger
}

func Info(msg string) {
	logger.Info().Msg(msg)
}

func Infof(format string, args ...interface{}) {
	logger.Info().Msgf(format, args...)
}

func Warn(msg string) {
	logger.Warn().Msg(msg)
}

func Warnf(format string, args ...interface{}) {
	logger.Warn().Msgf(format, args...)
}

func Error(msg string) {
	logger.Error().Msg(msg)
}

func Errorf(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}

func Debug(msg string) {
	logger.Debug().Msg(msg)
}

func Debugf(format string, args ...interface{}) {
	logger.Debug().Msgf(format, args...)
}

// SpecificLevelWriter forwards only the listed levels to the wrapped writer.
type SpecificLevelWriter struct {
	io.Writer
	Levels []zerolog.Level
}

func (w SpecificLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	for _, l := range w.Levels {
		if l == level {
			return w.Write(p)
		}
	}
	return len(p), nil
}
