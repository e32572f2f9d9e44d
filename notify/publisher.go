package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Event announces a notification attached to an entity.
type Event struct {
	ID             uuid.UUID      `json:"id"`
	NotificationID uint           `json:"notification_id"`
	Type           string         `json:"type"`
	EntityType     string         `json:"entity_type"`
	EntityID       uint           `json:"entity_id"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	CreatedBy      *uint          `json:"created_by,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (e Event) Key() string {
	return fmt.Sprintf("%s/%d", e.EntityType, e.EntityID)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	message, err := toMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return errors.Wrapf(err, "publish %s to %s", event.Key(), p.writer.Topic)
	}
	logrus.Debugf("KafkaPublisher.Publish: %s [%s]", event.Key(), event.Type)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(event Event) (kafka.Message, error) {
	serialized, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, errors.Wrapf(err, "encode event %s", event.ID)
	}
	return kafka.Message{
		Key:   []byte(event.Key()),
		Value: serialized,
		Headers: []kafka.Header{
			{Key: "notification-type", Value: []byte(event.Type)},
		},
		Time: event.CreatedAt,
	}, nil
}

// LogPublisher writes events to the logrus logger.
type LogPublisher struct {
	logger logrus.FieldLogger
}

func NewLogPublisher(logger logrus.FieldLogger) *LogPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.WithFields(logrus.Fields{
		"event":        event.ID,
		"notification": event.NotificationID,
		"entity":       event.Key(),
	}).Infof("LogPublisher.Publish: %s", event.Type)
	return nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
