package matmul

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/mpmatmul/internal/logging"
)

const tracerName = "github.com/agbru/mpmatmul/internal/matmul"

type options struct {
	observer Observer
	logger   logging.Logger
	tracer   trace.Tracer
}

// Option configures a Multiply call.
type Option func(*options)

// WithObserver attaches an observer to the coordinator. It is ignored on
// worker ranks.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithLogger sets the logger used by the coordinator and the workers.
func WithLogger(l logging.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

// WithTracer overrides the tracer used for the matmul.Multiply span. The
// global OpenTelemetry tracer provider is used by default.
func WithTracer(t trace.Tracer) Option {
	return func(opts *options) { opts.tracer = t }
}

func newOptions(opts []Option) options {
	o := options{
		observer: NoOpObserver{},
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}
