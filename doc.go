// Package flowkit provides building blocks for pull-based reactive streams
// with backpressure.
//
// # Architecture
//
// FlowKit is a small set of composable packages around one contract: a
// Publisher delivers items to a Subscriber only as fast as the Subscriber
// asks for them.
//
//	┌─────────────────────────────────────┐
//	│          Operators                  │  takelast, ...
//	│  (buffer, trim, pace delivery)      │
//	└─────────────────────────────────────┘
//	           ↓ built on
//	┌─────────────────────────────────────┐
//	│          flow contracts             │  Publisher, Subscriber,
//	│  (subscribe, request, cancel)       │  Subscription, Demand
//	└─────────────────────────────────────┘
//	           ↓ backed by
//	┌─────────────────────────────────────┐
//	│          Infrastructure             │  pkg/spsc, pkg/clock,
//	│  (queues, clocks, errors, metrics)  │  errors, metric
//	└─────────────────────────────────────┘
//
// Packages:
//
//   - flow: the Publisher/Subscriber/Subscription contracts, demand
//     accounting, and protocol validation shared by every operator
//   - takelast: an operator that replays only the items received within a
//     trailing time window of the most recent item, capped at a maximum
//     retained count
//   - pkg/clock: the time source operators stamp items with
//   - pkg/spsc: the single-producer/single-consumer queue operators buffer
//     items in
//   - errors: classified error handling shared across the module
//   - metric: Prometheus metrics registry for operator observability
//
// # Threading Model
//
// Upstream signals (OnNext, OnError, OnComplete) are serialized by the
// upstream contract. Downstream calls (Request, Cancel) may arrive from any
// goroutine at any time. Operators never create goroutines of their own and
// never call into a downstream Subscriber from more than one goroutine at
// once; serialization is done with lock-free work counters, not mutexes.
//
// # Observability
//
// Operators log through log/slog and can optionally export Prometheus
// metrics through a metric.MetricsRegistry. Neither is required for correctness.
package flowkit
