package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

const (
	TopicPrerenderRequested = "caratcompare.prerender.requested"
	TopicSitePublished      = "caratcompare.site.published"
	TopicDeadLetter         = "caratcompare.dead_letter"

	EventPrerenderRequested = "prerender.requested"
	EventSitePublished      = "site.published"

	schemaVersion = "1"
)

// EventEnvelope wraps every event payload.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// PrerenderRequestedPayload asks a worker to regenerate and publish the site.
type PrerenderRequestedPayload struct {
	Reason      string    `json:"reason,omitempty"`
	BaseURL     string    `json:"base_url,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// SitePublishedPayload announces a completed publish run.
type SitePublishedPayload struct {
	RunID       string    `json:"run_id"`
	Pages       int       `json:"pages"`
	SitemapKey  string    `json:"sitemap_key"`
	PublishedAt time.Time `json:"published_at"`
}

// NewEnvelope builds an envelope with a fresh event id.
func NewEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       raw,
	}, nil
}

// DecodeEnvelope parses data and unmarshals its payload into out when out is
// non-nil.
func DecodeEnvelope(data []byte, out interface{}) (*EventEnvelope, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode event envelope")
	}
	if out != nil && len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, out); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode event payload").WithDetail(env.EventType)
		}
	}
	return &env, nil
}

// Publisher is the subset of Producer used to emit events.
type Publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// PublishEvent wraps payload in an envelope and writes it to topic keyed by
// key.
func PublishEvent(ctx context.Context, p Publisher, topic, eventType, source, key string, payload interface{}) (*EventEnvelope, error) {
	env, err := NewEnvelope(eventType, source, payload)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event envelope")
	}
	msg := &ProducerMessage{
		Topic:   topic,
		Key:     []byte(key),
		Value:   data,
		Headers: map[string]string{"event_type": eventType, "event_id": env.EventID},
	}
	if err := p.Publish(ctx, msg); err != nil {
		return nil, err
	}
	return env, nil
}

// TopicConfig describes a topic to be created.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
}

// DefaultTopics returns the topics the site pipeline uses.
func DefaultTopics(requestTopic, publishedTopic string) []TopicConfig {
	if requestTopic == "" {
		requestTopic = TopicPrerenderRequested
	}
	if publishedTopic == "" {
		publishedTopic = TopicSitePublished
	}
	week := int64(7 * 24 * time.Hour / time.Millisecond)
	return []TopicConfig{
		{Name: requestTopic, NumPartitions: 1, ReplicationFactor: 1, RetentionMs: week},
		{Name: publishedTopic, NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 4 * week},
		{Name: TopicDeadLetter, NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 4 * week},
	}
}

// TopicConn is the subset of kafka.Conn used for topic administration.
type TopicConn interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates topics on startup.
type TopicManager struct {
	conn   TopicConn
	logger logging.Logger
}

// NewTopicManager dials broker.
func NewTopicManager(broker string, logger logging.Logger) (*TopicManager, error) {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessagingError, "dial kafka").WithDetail(broker)
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

// NewTopicManagerFrom wraps an existing connection.
func NewTopicManagerFrom(conn TopicConn, logger logging.Logger) *TopicManager {
	return &TopicManager{conn: conn, logger: logger}
}

// TopicExists reports whether name has at least one partition.
func (m *TopicManager) TopicExists(name string) bool {
	parts, err := m.conn.ReadPartitions(name)
	return err == nil && len(parts) > 0
}

// EnsureTopics creates every topic that does not yet exist.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, t := range topics {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if t.Name == "" || t.NumPartitions <= 0 || t.ReplicationFactor <= 0 {
			return errors.New(errors.ErrCodeValidation, "invalid topic config").WithDetail(t.Name)
		}
		if m.TopicExists(t.Name) {
			continue
		}
		kt := kafka.TopicConfig{
			Topic:             t.Name,
			NumPartitions:     t.NumPartitions,
			ReplicationFactor: t.ReplicationFactor,
		}
		if t.RetentionMs > 0 {
			kt.ConfigEntries = []kafka.ConfigEntry{{ConfigName: "retention.ms", ConfigValue: fmt.Sprintf("%d", t.RetentionMs)}}
		}
		if err := m.conn.CreateTopics(kt); err != nil {
			return errors.Wrap(err, errors.ErrCodeMessagingError, "create topic").WithDetail(t.Name)
		}
		m.logger.Info("topic created", logging.String("topic", t.Name))
	}
	return nil
}

// Close closes the admin connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}
