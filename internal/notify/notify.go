// Package notify is the cross-view change broadcast: when a mutation is
// confirmed by the backend, other views observing the same collection are
// told to refresh. Subscriptions are explicit (no process-global bus), so a
// component's dependencies are visible where it is constructed.
package notify

import "sync"

type Event struct {
	// Collection names what changed, e.g. CollectionLeads.
	Collection string
}

const (
	CollectionLeads    = "leads"
	CollectionCostings = "costings"
)

type Publisher struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func NewPublisher() *Publisher {
	return &Publisher{subs: map[int]func(Event){}}
}

// Subscribe registers fn and returns its cancel func. fn runs synchronously
// on the publishing goroutine; subscribers must not block.
func (p *Publisher) Subscribe(fn func(Event)) (cancel func()) {
	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Publisher) Publish(e Event) {
	p.mu.Lock()
	fns := make([]func(Event), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
