package events

import (
	"context"
	"encoding/json"
	"sync"

	applog "abcretail/internal/log"
)

// Publisher delivers serialized event payloads to named queues. Delivery is
// fire-and-forget and at-least-once; callers must not assume ordering.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

// LogPublisher writes events into the structured log instead of a broker.
// It is the fallback when no brokers are configured, so the app stays
// runnable in dev without Kafka.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, queue string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	applog.Info(nil, "event.publish", map[string]any{"queue": queue, "payload": json.RawMessage(b)})
	return nil
}

// Capture records published events in memory. Test double.
type Capture struct {
	mu       sync.Mutex
	captured []Captured
}

type Captured struct {
	Queue   string
	Payload any
}

func (c *Capture) Publish(_ context.Context, queue string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captured = append(c.captured, Captured{Queue: queue, Payload: payload})
	return nil
}

func (c *Capture) All() []Captured {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Captured, len(c.captured))
	copy(out, c.captured)
	return out
}

// ByQueue returns captured events for one queue, oldest first.
func (c *Capture) ByQueue(queue string) []Captured {
	var out []Captured
	for _, ev := range c.All() {
		if ev.Queue == queue {
			out = append(out, ev)
		}
	}
	return out
}

func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captured = nil
}
