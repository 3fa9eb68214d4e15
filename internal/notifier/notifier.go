// Package notifier pushes tenant-scoped change events to subscribed
// listeners. Delivery is best-effort and at-most-once per subscription: a
// slow or disconnected subscriber misses events and is expected to resync
// with a fresh full read, not to replay a log.
package notifier

import (
	"sync"
	"time"

	"github.com/taskflowhq/taskflow-api/internal/authz"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes a single resource mutation. Before is nil for creates,
// After is nil for deletes.
type Event struct {
	Kind     authz.Kind  `json:"kind"`
	Op       Op          `json:"op"`
	TenantID *uint64     `json:"tenant_id"`
	OwnerID  uint64      `json:"owner_id"`
	Before   interface{} `json:"before,omitempty"`
	After    interface{} `json:"after,omitempty"`
}

// FilterFunc decides whether a subscription wants an event.
type FilterFunc func(Event) bool

// ForTenant matches events of one resource kind scoped to one tenant.
func ForTenant(kind authz.Kind, tenantID uint64) FilterFunc {
	return func(e Event) bool {
		return e.Kind == kind && e.TenantID != nil && *e.TenantID == tenantID
	}
}

// ForOwner matches events of one resource kind for personal (tenant-less)
// resources of one owner.
func ForOwner(kind authz.Kind, ownerID uint64) FilterFunc {
	return func(e Event) bool {
		return e.Kind == kind && e.TenantID == nil && e.OwnerID == ownerID
	}
}

// Subscription is a handle owned by the caller. Events arrive on C until
// Close is called; Close is idempotent per handle lifecycle and must be
// called to release the slot.
type Subscription struct {
	C <-chan Event

	pub  *Publisher
	ch   chan Event
	once sync.Once
}

// Close tears the subscription down and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.pub.evict(s.ch)
	})
}

// Publisher fans events out to filtered subscriptions. Subscriptions are
// explicit handles returned to callers, not entries in ambient global state.
type Publisher struct {
	mu      sync.RWMutex
	subs    map[chan Event]FilterFunc
	buffer  int
	timeout time.Duration
	closed  bool
	onDrop  func()
}

// NewPublisher creates a publisher. sendTimeout bounds how long a publish
// waits on a full subscriber buffer before dropping the event for that
// subscriber.
func NewPublisher(sendTimeout time.Duration, buffer int) *Publisher {
	return &Publisher{
		subs:    make(map[chan Event]FilterFunc),
		buffer:  buffer,
		timeout: sendTimeout,
	}
}

// SetDropHook registers a callback invoked once per dropped event, typically
// a metrics counter. Must be called before the publisher is in use.
func (p *Publisher) SetDropHook(fn func()) {
	p.onDrop = fn
}

// Subscribe registers a filtered subscription. A nil filter receives every
// event.
func (p *Publisher) Subscribe(filter FilterFunc) *Subscription {
	ch := make(chan Event, p.buffer)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(ch)
		return &Subscription{C: ch, pub: p, ch: ch}
	}
	p.subs[ch] = filter
	p.mu.Unlock()

	return &Subscription{C: ch, pub: p, ch: ch}
}

func (p *Publisher) evict(ch chan Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.subs[ch]; ok {
		delete(p.subs, ch)
		close(ch)
	}
}

// Publish delivers the event to every matching subscription, waiting at most
// the configured timeout per subscriber.
func (p *Publisher) Publish(e Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var wg sync.WaitGroup
	for ch, filter := range p.subs {
		wg.Add(1)
		go p.send(ch, filter, e, &wg)
	}
	wg.Wait()
}

func (p *Publisher) send(ch chan Event, filter FilterFunc, e Event, wg *sync.WaitGroup) {
	defer wg.Done()

	if filter != nil && !filter(e) {
		return
	}

	select {
	case ch <- e:
	case <-time.After(p.timeout):
		// subscriber too slow: drop, at-most-once delivery
		if p.onDrop != nil {
			p.onDrop()
		}
	}
}

// Close tears down every subscription.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	for ch := range p.subs {
		delete(p.subs, ch)
		close(ch)
	}
}
