package service

import (
	"sync"
	"time"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

// Subscriber receives pipeline events. OnJobEvent runs on the publishing
// goroutine and the pipeline waits for it to return.
type Subscriber interface {
	OnJobEvent(event model.JobEvent)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(event model.JobEvent)

func (f SubscriberFunc) OnJobEvent(event model.JobEvent) { f(event) }

// Notifier delivers every event to all current subscribers in subscription order.
type Notifier struct {
	mu   sync.RWMutex
	next int
	subs []subscription
}

type subscription struct {
	id  int
	sub Subscriber
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers s and returns a function that removes it.
func (n *Notifier) Subscribe(s Subscriber) (unsubscribe func()) {
	n.mu.Lock()
	n.next++
	id := n.next
	n.subs = append(n.subs, subscription{id: id, sub: s})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			for i, s := range n.subs {
				if s.id == id {
					n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers event synchronously. Subscribers may subscribe or
// unsubscribe from inside OnJobEvent; the change applies to the next event.
func (n *Notifier) Publish(event model.JobEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	n.mu.RLock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	for _, s := range subs {
		s.sub.OnJobEvent(event)
	}
}
