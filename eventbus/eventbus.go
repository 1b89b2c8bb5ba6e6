package eventbus

import (
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// Wildcard subscribes a callback to every event type.
const Wildcard = "*"

// DefaultHistoryLimit bounds the bus event history when no explicit limit is
// configured.
const DefaultHistoryLimit = 100

// Event is an immutable record of something that happened. Type is a
// dot-namespaced string such as "agent.before_run".
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent creates an event of the given type carrying the given payload.
func NewEvent(eventType string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		ID:        core.NewID(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// String implements fmt.Stringer for log-friendly rendering.
func (e Event) String() string { return fmt.Sprintf("Event(%s, %s)", e.Type, e.ID) }

// Callback is invoked for each delivered event.
type Callback func(Event)

// Subscription ties a callback to an event type for the lifetime of its
// registration on the bus.
type Subscription struct {
	ID        string
	EventType string
	callback  Callback
}

// Options configures a Bus.
type Options struct {
	// HistoryLimit bounds the retained event history.
	HistoryLimit int
	// Logger receives subscriber failure reports. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Bus is the publish/subscribe hub. It is safe for concurrent access.
type Bus struct {
	mu            sync.Mutex
	subscriptions map[string][]*Subscription
	history       []Event
	historyLimit  int
	logger        logging.Logger
}

// New constructs a Bus with optional overrides.
func New(optFns ...func(o *Options)) *Bus {
	opts := Options{
		HistoryLimit: DefaultHistoryLimit,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HistoryLimit < 1 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Bus{
		subscriptions: map[string][]*Subscription{},
		historyLimit:  opts.HistoryLimit,
		logger:        opts.Logger,
	}
}

// Publish appends the event to the bounded history, then synchronously
// invokes every subscriber for the event's type followed by every wildcard
// subscriber, in subscription order. The event is fully delivered before
// Publish returns.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	b.history = append(b.history, event)
	if len(b.history) > b.historyLimit {
		b.history = b.history[len(b.history)-b.historyLimit:]
	}
	exact := b.subscriptions[event.Type]
	wildcard := b.subscriptions[Wildcard]
	targets := make([]*Subscription, 0, len(exact)+len(wildcard))
	targets = append(targets, exact...)
	if event.Type != Wildcard {
		targets = append(targets, wildcard...)
	}
	b.mu.Unlock()

	for _, sub := range targets {
		b.deliver(sub, event)
	}
}

// deliver invokes one callback, isolating the publisher and the remaining
// subscribers from its panics.
func (b *Bus) deliver(sub *Subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				"event_type", event.Type, "event_id", event.ID,
				"subscription_id", sub.ID, "panic", fmt.Sprint(r))
		}
	}()
	sub.callback(event)
}

// Subscribe registers a callback for an exact event type or the wildcard "*".
func (b *Bus) Subscribe(eventType string, callback Callback) *Subscription {
	sub := &Subscription{ID: core.NewID(), EventType: eventType, callback: callback}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[eventType] = append(b.subscriptions[eventType], sub)
	b.logger.Debug("subscription added", "event_type", eventType, "subscription_id", sub.ID)
	return sub
}

// Unsubscribe removes a subscription by id, cleaning up the type bucket when
// it becomes empty. It returns false if the subscription is not registered.
func (b *Bus) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscriptions[sub.EventType]
	for i, s := range subs {
		if s.ID != sub.ID {
			continue
		}
		subs = append(subs[:i], subs[i+1:]...)
		if len(subs) == 0 {
			delete(b.subscriptions, sub.EventType)
		} else {
			b.subscriptions[sub.EventType] = subs
		}
		b.logger.Debug("subscription removed", "event_type", sub.EventType, "subscription_id", sub.ID)
		return true
	}
	return false
}

// RecentEvents returns up to limit most recent events, oldest first,
// optionally filtered by exact type. An empty eventType matches everything.
func (b *Bus) RecentEvents(eventType string, limit int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	filtered := b.history
	if eventType != "" {
		filtered = make([]Event, 0, len(b.history))
		for _, e := range b.history {
			if e.Type == eventType {
				filtered = append(filtered, e)
			}
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	out := make([]Event, len(filtered))
	copy(out, filtered)
	return out
}
