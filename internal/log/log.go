// Package log wires logrus into the service: level and formatter setup, a
// context-carried logger, and a hook that stamps entries with span IDs.
package log

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// L is the base entry used when a context carries no logger.
var L = logrus.NewEntry(logrus.StandardLogger())

type loggerKey struct{}

var hookOnce sync.Once

// Setup configures the standard logger. format is "text" or "json".
// It may be called more than once; the span hook is only added the first time.
func Setup(level, format string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	logrus.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: TimeFormat})
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: TimeFormat,
		})
	default:
		return errors.Errorf("unknown log format %q", format)
	}

	if out != nil {
		logrus.SetOutput(out)
	}
	hookOnce.Do(func() { logrus.AddHook(NewHook()) })
	return nil
}

// G returns the logger stored in ctx, or L, bound to ctx so hooks can read it.
func G(ctx context.Context) *logrus.Entry {
	entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry)
	if !ok || entry == nil {
		entry = L
	}
	return entry.WithContext(ctx)
}

// WithLogger returns a copy of ctx carrying entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry.WithContext(ctx))
}

// UpdateContext stores G(ctx) back into ctx after fields have been added.
func UpdateContext(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, G(ctx).WithFields(fields))
}
