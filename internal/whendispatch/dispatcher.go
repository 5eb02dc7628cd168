// Package whendispatch implements the WhenDispatcher (C5): a
// dependency-indexed, FIFO, non-reentrant mutation queue that drives
// `when` subscriptions to a fixed point after every mutation (§4.5).
//
// Grounded on GlyphLang's EmitEvent/eventHandlers map
// (event-type string -> handler list, dispatched immediately, handlers
// may spawn a goroutine), generalized to a variable-name-keyed,
// strictly single-threaded queue. GlyphLang's `go func(h EventHandler)`
// async dispatch is deliberately dropped: §5 requires strict
// single-threadedness.
package whendispatch

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// ConditionFunc re-evaluates a subscription's condition (and, for
// pattern subscriptions, attempts the match/guard). It returns whether
// the body should run.
type ConditionFunc func() (bool, error)

// BodyFunc runs a subscription's body once its condition holds.
type BodyFunc func() error

// Subscription is one registered `when` clause.
type Subscription struct {
	ID        string
	Keys      []string
	Condition ConditionFunc
	Body      BodyFunc
	seq       int
}

const defaultSafetyLimit = 100000

// Dispatcher is the single when-dispatch queue for one evaluator
// instance (§9: "owned by the evaluator instance, not process
// globals").
type Dispatcher struct {
	subsByKey   map[string][]*Subscription
	queue       []string
	dispatching bool
	safetyLimit int
	nextSeq     int
}

// New creates a Dispatcher. safetyLimit <= 0 defaults to 100,000 (§4.5,
// §8 property 5).
func New(safetyLimit int) *Dispatcher {
	if safetyLimit <= 0 {
		safetyLimit = defaultSafetyLimit
	}
	return &Dispatcher{
		subsByKey:   make(map[string][]*Subscription),
		safetyLimit: safetyLimit,
	}
}

// Subscribe registers a `when` clause under the dependency names
// statically collected from its condition (or "*" if that set is
// empty) (§4.5 Registration).
func (d *Dispatcher) Subscribe(keys []string, cond ConditionFunc, body BodyFunc) *Subscription {
	if len(keys) == 0 {
		keys = []string{"*"}
	}
	sub := &Subscription{
		ID:        uuid.New().String(),
		Keys:      keys,
		Condition: cond,
		Body:      body,
		seq:       d.nextSeq,
	}
	d.nextSeq++
	for _, k := range keys {
		d.subsByKey[k] = append(d.subsByKey[k], sub)
	}
	return sub
}

// Keys returns every dependency key with at least one active
// subscription, for REPL introspection (`:when`).
func (d *Dispatcher) Keys() []string {
	keys := make([]string, 0, len(d.subsByKey))
	for k, subs := range d.subsByKey {
		if len(subs) > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// CountFor returns the number of active subscriptions depending on key.
func (d *Dispatcher) CountFor(key string) int {
	return len(d.subsByKey[key])
}

// Unsubscribe removes a subscription from every key bucket it was
// registered under.
func (d *Dispatcher) Unsubscribe(sub *Subscription) {
	for _, k := range sub.Keys {
		list := d.subsByKey[k]
		for i, s := range list {
			if s == sub {
				d.subsByKey[k] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// Publish enqueues a mutation of name and, if no dispatch is already in
// progress, drains the queue to a fixed point before returning (§4.5,
// §5: "invoke the dispatcher's publish hook exactly once per logical
// mutation"). A Publish call arriving while a drain is already running
// (i.e. from inside a subscription body) only enqueues — the
// already-running drain loop picks it up, which is what makes the
// dispatcher non-reentrant.
func (d *Dispatcher) Publish(name string) error {
	d.queue = append(d.queue, name)
	if d.dispatching {
		return nil
	}
	d.dispatching = true
	defer func() { d.dispatching = false }()
	return d.drain()
}

// Flush drains any mutations left queued (defensively — Publish always
// drains to completion before returning, so this is normally a no-op),
// matching §4.4's statement-boundary step "drains the WhenDispatcher
// queue".
func (d *Dispatcher) Flush() error {
	if d.dispatching || len(d.queue) == 0 {
		return nil
	}
	d.dispatching = true
	defer func() { d.dispatching = false }()
	return d.drain()
}

func (d *Dispatcher) drain() error {
	iterations := 0
	for len(d.queue) > 0 {
		name := d.queue[0]
		d.queue = d.queue[1:]

		iterations++
		if iterations > d.safetyLimit {
			d.queue = nil
			return fmt.Errorf("whendispatch: exceeded %d dispatch iterations (suspected infinite when loop)", d.safetyLimit)
		}

		for _, sub := range d.subscriptionsFor(name) {
			ok, err := sub.Condition()
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := sub.Body(); err != nil {
				return err
			}
		}
	}
	return nil
}

// subscriptionsFor returns the union of subscriptions keyed by name and
// by "*", in registration order (§4.5 Dispatch, Ordering).
func (d *Dispatcher) subscriptionsFor(name string) []*Subscription {
	combined := append(append([]*Subscription{}, d.subsByKey[name]...), d.subsByKey["*"]...)
	sort.SliceStable(combined, func(i, j int) bool { return combined[i].seq < combined[j].seq })
	return combined
}
