// Package publisher generates fake users and submits them to a topic at a fixed pace.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edgeflare/fakeuser/pkg/metrics"
	"github.com/edgeflare/fakeuser/pkg/user"
	"go.uber.org/zap"
)

const (
	DefaultTopic = "test-avro-topic"
	DefaultDelay = 100 * time.Millisecond
)

// ErrInterrupted is returned when the context ends during the pacing delay or a send.
var ErrInterrupted = errors.New("pacing interrupted")

// Sender hands an encoded record to a messaging client for asynchronous delivery.
type Sender interface {
	Send(ctx context.Context, topic string, value []byte) error
}

// Options configures a Publisher. An empty Topic means DefaultTopic; a zero Delay disables pacing.
type Options struct {
	Topic  string
	Delay  time.Duration
	Logger *zap.Logger
}

// Publisher runs the generate-and-publish loop. It holds no per-call state,
// so concurrent calls run independently.
type Publisher struct {
	sender    Sender
	generator *user.Generator
	encoder   user.Encoder
	topic     string
	delay     time.Duration
	logger    *zap.Logger
}

// New creates a Publisher that owns no resources; the caller closes sender.
func New(sender Sender, generator *user.Generator, encoder user.Encoder, opts *Options) *Publisher {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.Topic == "" {
		o.Topic = DefaultTopic
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	return &Publisher{
		sender:    sender,
		generator: generator,
		encoder:   encoder,
		topic:     o.Topic,
		delay:     o.Delay,
		logger:    o.Logger,
	}
}

// Topic returns the topic records are published to.
func (p *Publisher) Topic() string {
	return p.topic
}

// SendRandomUsers generates and publishes count users, pausing before each one.
// It returns the number of records handed to the sender. Counts <= 0 send nothing.
func (p *Publisher) SendRandomUsers(ctx context.Context, count int) (int, error) {
	return p.Run(ctx, count, nil)
}

// Run is SendRandomUsers with a callback invoked after every submitted record.
func (p *Publisher) Run(ctx context.Context, count int, onSent func(user.User)) (int, error) {
	sent := 0
	for i := 0; i < count; i++ {
		if err := p.pause(ctx); err != nil {
			return sent, err
		}

		u := p.generator.Generate()
		metrics.RecordsGenerated.WithLabelValues(p.topic).Inc()

		value, err := p.encoder.Encode(u)
		if err != nil {
			return sent, fmt.Errorf("failed to encode user %d of %d: %w", i+1, count, err)
		}

		if err := p.sender.Send(ctx, p.topic, value); err != nil {
			metrics.SendErrors.WithLabelValues(p.topic).Inc()
			if ctx.Err() != nil {
				return sent, fmt.Errorf("failed to send user %d of %d: %w: %w", i+1, count, ErrInterrupted, err)
			}
			return sent, fmt.Errorf("failed to send user %d of %d: %w", i+1, count, err)
		}
		sent++
		metrics.RecordsSent.WithLabelValues(p.topic).Inc()

		p.logger.Info("Sent user",
			zap.String("topic", p.topic),
			zap.String("name", u.Name),
			zap.Int32("age", u.Age))

		if onSent != nil {
			onSent(u)
		}
	}
	return sent, nil
}

func (p *Publisher) pause(ctx context.Context) error {
	if p.delay == 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return nil
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
}
