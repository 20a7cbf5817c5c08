// Package flow defines the Publisher/Subscriber/Subscription contracts
// FlowKit operators are built on, together with the demand accounting and
// protocol validation they share.
//
// # Contracts
//
// A Publisher calls OnSubscribe exactly once before any data, then zero or
// more OnNext calls, then exactly one of OnError or OnComplete, never both
// and never followed by further signals. Those signals are serialized:
// implementations never deliver two of them concurrently to the same
// Subscriber.
//
// Request and Cancel carry no such guarantee. A Subscriber may call them
// from any goroutine at any time, including from inside its own signal
// callbacks; Subscription implementations must tolerate that.
package flow

import (
	"fmt"
	"math"

	"github.com/c360/flowkit/errors"
)

// Unbounded is the request amount that asks a Subscription for everything it
// will ever produce. It is also the value demand saturates to, after which
// demand accounting stops.
const Unbounded = math.MaxInt64

// Subscription links one Subscriber to one Publisher and carries the
// Subscriber's demand and cancellation signals back upstream.
type Subscription interface {
	// Request asks for n more items. n must be positive; use
	// ValidateRequest before calling when n comes from outside.
	Request(n int64)

	// Cancel stops the subscription. Idempotent.
	Cancel()
}

// Subscriber receives the signals of one subscription.
type Subscriber[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Publisher produces items for a single Subscriber per Subscribe call.
type Publisher[T any] interface {
	Subscribe(sub Subscriber[T])
}

// ValidateRequest checks a request amount before it reaches demand
// accounting. Non-positive amounts are a protocol violation.
func ValidateRequest(n int64) error {
	if n <= 0 {
		return errors.WrapInvalid(errors.ErrNonPositiveRequest,
			"flow", "ValidateRequest", fmt.Sprintf("request of %d", n))
	}
	return nil
}

// ValidateSubscription enforces the single-subscription rule when a
// Subscriber receives OnSubscribe: next must be non-nil and current must
// still be unset. On a duplicate, next is cancelled so the redundant
// upstream does not keep producing.
func ValidateSubscription(current, next Subscription) error {
	if next == nil {
		return errors.WrapInvalid(fmt.Errorf("nil subscription"),
			"flow", "ValidateSubscription", "subscription check")
	}
	if current != nil {
		next.Cancel()
		return errors.WrapInvalid(errors.ErrDuplicateSubscription,
			"flow", "ValidateSubscription", "subscription check")
	}
	return nil
}
