package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger envuelve zerolog con el formato que usa el servicio: consola legible
// en desarrollo y JSON en producción.
type Logger struct {
	log zerolog.Logger
}

// Config parámetros para construir el logger.
type Config struct {
	Env   string // development, staging, production
	Level string // trace, debug, info, warn, error
}

// New construye un Logger a partir de la configuración.
func New(cfg Config) *Logger {
	lvl := parseLevel(cfg.Level)

	var out io.Writer = os.Stdout
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return &Logger{log: zl}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Trace inicia un evento de nivel trace.
func (l *Logger) Trace() *zerolog.Event { return l.log.Trace() }

// Debug inicia un evento de nivel debug.
func (l *Logger) Debug() *zerolog.Event { return l.log.Debug() }

// Info inicia un evento de nivel info.
func (l *Logger) Info() *zerolog.Event { return l.log.Info() }

// Warn inicia un evento de nivel warn.
func (l *Logger) Warn() *zerolog.Event { return l.log.Warn() }

// Error inicia un evento de nivel error.
func (l *Logger) Error() *zerolog.Event { return l.log.Error() }

// Fatal inicia un evento de nivel fatal (termina el proceso al hacer Msg).
func (l *Logger) Fatal() *zerolog.Event { return l.log.Fatal() }

// With devuelve un Logger hijo con campos adicionales.
func (l *Logger) With() zerolog.Context { return l.log.With() }

// Zerolog expone el logger subyacente para middlewares que lo requieran.
func (l *Logger) Zerolog() *zerolog.Logger { return &l.log }

// Nop devuelve un logger que descarta todo. Útil en tests.
func Nop() *Logger {
	return &Logger{log: zerolog.Nop()}
}
