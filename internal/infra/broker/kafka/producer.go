package kafka

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/IBM/sarama"

	"campusx/internal/app/policies"
)

type Producer struct {
	sync sarama.SyncProducer
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync}, nil
}

func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	var hs []sarama.RecordHeader
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
	_, _, err := p.sync.SendMessage(msg)
	return err
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

// Notifier publishes application events to Kafka. The topic is derived from
// the event name, with dots replaced so "booking.approved" lands on
// "<prefix>booking-approved".
type Notifier struct {
	Producer    *Producer
	TopicPrefix string
}

func NewNotifier(producer *Producer, topicPrefix string) *Notifier {
	return &Notifier{Producer: producer, TopicPrefix: topicPrefix}
}

func (n *Notifier) Publish(ctx context.Context, event policies.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	topic := n.TopicPrefix + strings.ReplaceAll(event.Name, ".", "-")
	return n.Producer.Publish(ctx, topic, event.Key, payload, map[string]string{
		"event": event.Name,
	})
}

var _ policies.Notifier = (*Notifier)(nil)
