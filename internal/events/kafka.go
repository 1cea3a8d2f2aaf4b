package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	kafka "github.com/segmentio/kafka-go"

	"abcretail/internal/domain"
)

// KafkaPublisher publishes queue payloads as JSON messages, one topic per
// queue name. Writers are created lazily and reused.
type KafkaPublisher struct {
	brokers []string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func (p *KafkaPublisher) writer(queue string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.writers[queue]
	if !ok {
		w = &kafka.Writer{
			Addr:     kafka.TCP(p.brokers...),
			Topic:    queue,
			Balancer: &kafka.LeastBytes{},
		}
		p.writers[queue] = w
	}
	return w
}

func (p *KafkaPublisher) Publish(ctx context.Context, queue string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", queue, err)
	}
	if err := p.writer(queue).WriteMessages(ctx, kafka.Message{Value: b}); err != nil {
		return &domain.TransportError{Op: "publish to " + queue, Err: err}
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
