// Package takelast provides a backpressure-aware operator that replays only
// the tail of an upstream stream: the items received within a trailing time
// window of the most recent item, additionally capped at a maximum retained
// count.
//
// Items buffer as they arrive and the buffer is continuously trimmed,
// oldest-first, to the configured window. Nothing is delivered until
// upstream terminates — which items are "last" is unknowable before that —
// after which the retained items drain downstream at the pace of downstream
// demand. Upstream itself is never backpressured; the operator requests
// unbounded demand on subscribe.
//
// Two error policies are supported. With DelayError an upstream error is
// held until every retained item has been delivered. Without it the error
// preempts delivery and the retained items are discarded.
//
// Usage:
//
//	pub, err := takelast.New[Sample](source, takelast.Config{
//		Count:  100,
//		Window: 30 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	pub.Subscribe(downstream)
//
// The operator performs no I/O, starts no goroutines, and delivers all
// downstream signals from one logical worker at a time.
package takelast

import (
	"fmt"

	"github.com/c360/flowkit/errors"
	"github.com/c360/flowkit/flow"
)

// publisher wraps an upstream source so each Subscribe installs a fresh
// trailing-window subscriber between the source and the downstream consumer.
type publisher[T any] struct {
	source  flow.Publisher[T]
	cfg     Config
	opts    *operatorOptions
	metrics *operatorMetrics
}

// New creates a takelast operator over source. The returned Publisher can be
// subscribed any number of times; each subscription gets its own buffer and
// demand accounting. Metrics, when enabled, aggregate across subscriptions.
func New[T any](source flow.Publisher[T], cfg Config, options ...Option) (flow.Publisher[T], error) {
	if source == nil {
		return nil, errors.WrapInvalid(fmt.Errorf("nil source"), "takelast", "New", "source check")
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := applyOptions(options...)

	var metrics *operatorMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newOperatorMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapFatal(err, "takelast", "New", "metrics registration")
		}
	}

	return &publisher[T]{
		source:  source,
		cfg:     cfg,
		opts:    opts,
		metrics: metrics,
	}, nil
}

// Subscribe implements flow.Publisher.
func (p *publisher[T]) Subscribe(sub flow.Subscriber[T]) {
	if sub == nil {
		p.opts.logger.Warn("takelast: ignoring nil subscriber")
		return
	}
	p.source.Subscribe(newSubscriber(sub, p.cfg, p.opts, p.metrics))
}
