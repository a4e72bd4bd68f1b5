package log

import (
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"cpu-burn-lab/internal/logfields"
)

// TimeFormat is used for entry timestamps and [time.Time] fields.
const TimeFormat = time.RFC3339Nano

// Hook formats time fields and adds [logfields.TraceID] and [logfields.SpanID]
// from the span stored in [logrus.Entry.Context], if any.
type Hook struct {
	// Duration fields are written as milliseconds when true.
	DurationAsMillis bool

	AddSpanContext bool
}

var _ logrus.Hook = &Hook{}

func NewHook() *Hook {
	return &Hook{
		DurationAsMillis: true,
		AddSpanContext:   true,
	}
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *Hook) Fire(e *logrus.Entry) error {
	for k, v := range e.Data {
		switch vv := v.(type) {
		case time.Time:
			e.Data[k] = vv.Format(TimeFormat)
		case time.Duration:
			if h.DurationAsMillis {
				e.Data[k] = vv.Milliseconds()
			}
		}
	}
	if h.AddSpanContext {
		h.addSpanContext(e)
	}
	return nil
}

func (h *Hook) addSpanContext(e *logrus.Entry) {
	if e.Context == nil {
		return
	}
	sctx := trace.SpanContextFromContext(e.Context)
	if !sctx.IsValid() {
		return
	}
	e.Data[logfields.TraceID] = sctx.TraceID().String()
	e.Data[logfields.SpanID] = sctx.SpanID().String()
}
