package producer

import (
	"context"
	"fmt"
	"io"

	"github.com/edgeflare/fakeuser/pkg/config"
	"github.com/edgeflare/fakeuser/pkg/kafka"
	"github.com/edgeflare/fakeuser/pkg/publisher"
	"github.com/edgeflare/fakeuser/pkg/user"
	"go.uber.org/zap"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newPublisher wires generator, encoder and sender from c. The returned closer
// releases the messaging client.
func newPublisher(ctx context.Context, c *config.Config, logger *zap.Logger) (*publisher.Publisher, io.Closer, error) {
	gen, err := user.NewGenerator(&user.GeneratorOptions{
		MinAge:     c.Producer.MinAge,
		MaxAge:     c.Producer.MaxAge,
		NameSource: c.Producer.NameSource,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create generator: %w", err)
	}

	enc, err := user.NewEncoder(c.Producer.Format, c.Producer.SchemaID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	var sender publisher.Sender
	var closer io.Closer = nopCloser{}

	switch c.Producer.Sink {
	case config.SinkDebug:
		sender = &publisher.DebugSender{Logger: logger.Named("debug")}
	default:
		if c.Kafka.EnsureTopic {
			if err := kafka.EnsureTopic(&c.Kafka, c.Producer.Topic, logger); err != nil {
				return nil, nil, err
			}
		}
		p, err := kafka.NewProducer(ctx, &c.Kafka,
			kafka.WithLogger(logger.Named("kafka")),
			kafka.WithContentType(enc.ContentType()))
		if err != nil {
			return nil, nil, err
		}
		sender, closer = p, p
	}

	pub := publisher.New(sender, gen, enc, &publisher.Options{
		Topic:  c.Producer.Topic,
		Delay:  c.Producer.Delay,
		Logger: logger,
	})

	logger.Info("publisher ready",
		zap.String("sink", c.Producer.Sink),
		zap.String("topic", c.Producer.Topic),
		zap.String("format", string(c.Producer.Format)),
		zap.Duration("delay", c.Producer.Delay))
	return pub, closer, nil
}
