package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
	ErrConsumerClosed = errors.New(errors.ErrCodeMessagingError, "consumer closed")
)

// RetryConfig defines handler retry behaviour.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topics          []string
	AutoOffsetReset string
	CommitInterval  time.Duration
	SessionTimeout  time.Duration
	MaxWait         time.Duration
	RetryConfig     RetryConfig
}

// ConsumerMetrics holds consumer counters.
type ConsumerMetrics struct {
	MessagesConsumed     atomic.Int64
	MessagesProcessed    atomic.Int64
	MessagesFailed       atomic.Int64
	MessagesRetried      atomic.Int64
	MessagesDeadLettered atomic.Int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer dispatches messages of a consumer group to per-topic handlers.
// Offsets are committed after the handler returns, whatever the outcome, so
// a poison message is never redelivered forever.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	mu       sync.RWMutex
	handlers map[string]MessageHandler

	running atomic.Bool
	stop    context.CancelFunc
	done    chan struct{}

	deadLetter *Producer
	metrics    *ConsumerMetrics
}

const (
	fetchErrorBackoff = time.Second
	readerMaxBytes    = 10 << 20
)

// NewConsumer creates a Consumer backed by a kafka.Reader. A dead-letter
// producer is created on the same brokers when RetryConfig names a topic.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = 5 * time.Second
	}
	start := kafka.FirstOffset
	if cfg.AutoOffsetReset == "latest" {
		start = kafka.LastOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MinBytes:       1,
		MaxBytes:       readerMaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
		SessionTimeout: cfg.SessionTimeout,
		StartOffset:    start,
		Dialer:         &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	})
	c := NewConsumerFrom(reader, cfg, logger)

	if cfg.RetryConfig.DeadLetterTopic != "" {
		dl, err := NewProducer(ProducerConfig{Brokers: cfg.Brokers, Acks: "all"}, logger.Named("dead_letter"))
		if err != nil {
			_ = reader.Close()
			return nil, err
		}
		c.deadLetter = dl
	}
	return c, nil
}

// NewConsumerFrom wraps an existing reader.
func NewConsumerFrom(r ReaderInterface, cfg ConsumerConfig, logger logging.Logger) *Consumer {
	return &Consumer{
		reader:   r,
		config:   cfg,
		logger:   logger,
		handlers: make(map[string]MessageHandler),
		metrics:  &ConsumerMetrics{},
	}
}

// WithDeadLetter routes messages that cannot be processed to p.
func (c *Consumer) WithDeadLetter(p *Producer) *Consumer {
	c.deadLetter = p
	return c
}

// Subscribe registers handler for topic, replacing any previous one.
func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()
	c.logger.Info("Subscribed to topic", logging.String("topic", topic))
}

func (c *Consumer) handler(topic string) (MessageHandler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[topic]
	return h, ok
}

// Start runs the consume loop in a goroutine until ctx is done or Close is
// called.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, c.stop = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.consume(ctx)

	c.logger.Info("Kafka consumer started",
		logging.String("group", c.config.GroupID),
		logging.Int("topics", len(c.config.Topics)))
	return nil
}

func (c *Consumer) consume(ctx context.Context) {
	defer close(c.done)
	for {
		m, err := c.reader.FetchMessage(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logger.Error("Fetch failed", logging.Err(err))
			if !sleepCtx(ctx, fetchErrorBackoff) {
				return
			}
			continue
		}
		c.metrics.MessagesConsumed.Add(1)
		c.dispatch(ctx, m)

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("Commit failed",
				logging.String("topic", m.Topic),
				logging.Int64("offset", m.Offset),
				logging.Err(err))
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, m kafka.Message) {
	h, ok := c.handler(m.Topic)
	if !ok {
		c.logger.Warn("No handler for topic", logging.String("topic", m.Topic))
		return
	}
	if err := c.processMessage(ctx, fromKafka(m), h); err != nil {
		c.metrics.MessagesFailed.Add(1)
		return
	}
	c.metrics.MessagesProcessed.Add(1)
}

func fromKafka(m kafka.Message) *Message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Headers:   headers,
		Timestamp: m.Time,
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// processMessage runs handler, retrying transient failures with doubling
// backoff. Permanent failures and exhausted retries are dead-lettered when a
// dead-letter topic is configured; the caller commits the offset either way.
func (c *Consumer) processMessage(ctx context.Context, msg *Message, handler MessageHandler) error {
	err := c.retry(ctx, msg, handler)
	if err == nil || ctx.Err() != nil {
		return err
	}

	log := c.logger.With(
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.String("code", errors.GetCode(err).String()),
	)
	if errors.Permanent(err) {
		log.Warn("Dropping unprocessable message", logging.Err(err))
	} else {
		log.Error("Message processing failed after retries", logging.Err(err))
	}
	c.deadLetterMessage(ctx, msg, err)
	return errors.Wrap(err, errors.ErrCodeMessagingError, "handler failed")
}

func (c *Consumer) retry(ctx context.Context, msg *Message, handler MessageHandler) error {
	rc := c.config.RetryConfig
	backoff, maxBackoff := rc.RetryBackoff, rc.MaxRetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}

	err := handler(ctx, msg)
	for attempt := 0; err != nil && attempt < rc.MaxRetries && !errors.Permanent(err); attempt++ {
		c.metrics.MessagesRetried.Add(1)
		if !sleepCtx(ctx, backoff) {
			return ctx.Err()
		}
		err = handler(ctx, msg)
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return err
}

func (c *Consumer) deadLetterMessage(ctx context.Context, msg *Message, cause error) {
	topic := c.config.RetryConfig.DeadLetterTopic
	if c.deadLetter == nil || topic == "" {
		return
	}
	headers := make(map[string]string, len(msg.Headers)+3)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["original_topic"] = msg.Topic
	headers["error_code"] = errors.GetCode(cause).String()
	headers["error_message"] = cause.Error()

	dl := &ProducerMessage{Topic: topic, Key: msg.Key, Value: msg.Value, Headers: headers}
	if err := c.deadLetter.Publish(ctx, dl); err != nil {
		c.logger.Error("Dead letter publish failed", logging.String("topic", topic), logging.Err(err))
		return
	}
	c.metrics.MessagesDeadLettered.Add(1)
}

// Processed returns the number of messages handled successfully.
func (c *Consumer) Processed() int64 { return c.metrics.MessagesProcessed.Load() }

// Close stops the loop, waits for it and closes the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.stop()
	<-c.done

	err := c.reader.Close()
	if c.deadLetter != nil {
		if dlErr := c.deadLetter.Close(); dlErr != nil {
			c.logger.Warn("Dead letter producer close failed", logging.Err(dlErr))
		}
	}
	c.logger.Info("Kafka consumer closed",
		logging.Int64("consumed", c.metrics.MessagesConsumed.Load()),
		logging.Int64("failed", c.metrics.MessagesFailed.Load()),
		logging.Int64("dead_lettered", c.metrics.MessagesDeadLettered.Load()))
	return err
}

// ValidateConsumerConfig validates configuration.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "topics required")
	}
	if cfg.AutoOffsetReset != "" && cfg.AutoOffsetReset != "earliest" && cfg.AutoOffsetReset != "latest" {
		return errors.New(errors.ErrCodeValidation, "invalid auto offset reset")
	}
	if cfg.RetryConfig.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}
