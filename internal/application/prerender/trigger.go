package prerender

import (
	"context"
	"time"

	"github.com/turtacn/CaratCompare/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

// Trigger returns a handler that publishes the site into sink for every
// prerender request. A request refused because another worker holds the
// publish lock is acknowledged; that worker's run covers it.
func (p *Pipeline) Trigger(sink Sink) kafka.MessageHandler {
	return func(ctx context.Context, msg *kafka.Message) error {
		var req kafka.PrerenderRequestedPayload
		env, err := kafka.DecodeEnvelope(msg.Value, &req)
		if err != nil {
			return err
		}
		log := p.logger.With(
			logging.String("event_id", env.EventID),
			logging.String("reason", req.Reason),
		)

		start := time.Now()
		res, err := p.Publish(ctx, sink)
		p.metrics.MessageProcessDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		if errors.IsCode(err, errors.ErrCodePrerenderLocked) {
			log.Info("Publish already in progress, request skipped")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info("Prerender request handled", logging.String("run_id", res.RunID), logging.Int("pages", res.Pages))
		return nil
	}
}

// Request asks the workers listening on topic to publish the site.
func Request(ctx context.Context, pub kafka.Publisher, topic, source string, req kafka.PrerenderRequestedPayload) (*kafka.EventEnvelope, error) {
	if topic == "" {
		topic = kafka.TopicPrerenderRequested
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}
	return kafka.PublishEvent(ctx, pub, topic, kafka.EventPrerenderRequested, source, "", req)
}
