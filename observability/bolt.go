package observability

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/bolt/v3"
)

// ParseLevel converts a level name to a bolt level. Unknown names map to info.
func ParseLevel(s string) bolt.Level {
	switch strings.ToLower(s) {
	case "trace":
		return bolt.TRACE
	case "debug":
		return bolt.DEBUG
	case "warn", "warning":
		return bolt.WARN
	case "error":
		return bolt.ERROR
	default:
		return bolt.INFO
	}
}

type boltLogger struct {
	logger *bolt.Logger
	fields []Field
}

// NewBoltLogger returns a Logger writing through bolt. format is "json" or
// "console"; a nil out writes to stderr.
func NewBoltLogger(level, format string, out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}
	var handler bolt.Handler
	if format == "json" {
		handler = bolt.NewJSONHandler(out)
	} else {
		handler = bolt.NewConsoleHandler(out)
	}
	return &boltLogger{logger: bolt.New(handler).SetLevel(ParseLevel(level))}
}

func (l *boltLogger) Debug(msg string, fields ...Field) { l.emit(l.logger.Debug(), msg, fields) }
func (l *boltLogger) Info(msg string, fields ...Field)  { l.emit(l.logger.Info(), msg, fields) }
func (l *boltLogger) Warn(msg string, fields ...Field)  { l.emit(l.logger.Warn(), msg, fields) }
func (l *boltLogger) Error(msg string, fields ...Field) { l.emit(l.logger.Error(), msg, fields) }

func (l *boltLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &boltLogger{logger: l.logger, fields: merged}
}

func (l *boltLogger) emit(e *bolt.Event, msg string, fields []Field) {
	for _, f := range l.fields {
		e = applyField(e, f)
	}
	for _, f := range fields {
		e = applyField(e, f)
	}
	e.Msg(msg)
}

func applyField(e *bolt.Event, f Field) *bolt.Event {
	switch v := f.Value().(type) {
	case string:
		return e.Str(f.Key(), v)
	case int:
		return e.Int(f.Key(), v)
	case int64:
		return e.Int64(f.Key(), v)
	case bool:
		return e.Bool(f.Key(), v)
	case float64:
		return e.Str(f.Key(), strconv.FormatFloat(v, 'f', -1, 64))
	case error:
		if v == nil {
			return e
		}
		return e.Err(v)
	case nil:
		return e
	default:
		return e.Str(f.Key(), fmt.Sprint(v))
	}
}
