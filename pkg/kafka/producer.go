package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
	"github.com/edgeflare/fakeuser/pkg/metrics"
	"go.uber.org/zap"
)

var ErrProducerClosed = errors.New("kafka producer closed")

// ProducerOption configures a Producer.
type ProducerOption func(*Producer)

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(logger *zap.Logger) ProducerOption {
	return func(p *Producer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithContentType attaches a content-type header to every message.
func WithContentType(contentType string) ProducerOption {
	return func(p *Producer) {
		if contentType == "" {
			return
		}
		p.headers = append(p.headers, sarama.RecordHeader{
			Key:   []byte("content-type"),
			Value: []byte(contentType),
		})
	}
}

// Producer hands messages to a sarama.AsyncProducer without waiting for acknowledgement.
// It is safe for concurrent use.
type Producer struct {
	producer sarama.AsyncProducer
	logger   *zap.Logger
	headers  []sarama.RecordHeader

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewProducer connects to the brokers in cfg, retrying with exponential backoff
// for up to cfg.ConnectRetry while the cluster is unreachable.
func NewProducer(ctx context.Context, cfg *Config, opts ...ProducerOption) (*Producer, error) {
	conf, err := cfg.ToSaramaConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create sarama config: %w", err)
	}

	p := &Producer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if cfg.ConnectRetry > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.MaxElapsedTime = cfg.ConnectRetry
		b = eb
	}

	producer, err := backoff.RetryNotifyWithData(
		func() (sarama.AsyncProducer, error) {
			return sarama.NewAsyncProducer(cfg.Brokers, conf)
		},
		backoff.WithContext(b, ctx),
		func(err error, next time.Duration) {
			p.logger.Warn("kafka unavailable, retrying",
				zap.Strings("brokers", cfg.Brokers),
				zap.Duration("backoff", next),
				zap.Error(err))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create async producer: %w", err)
	}

	return newProducer(producer, p), nil
}

// NewProducerFrom wraps an existing sarama.AsyncProducer. The producer must have
// been configured with Return.Errors (and optionally Return.Successes) enabled.
func NewProducerFrom(producer sarama.AsyncProducer, opts ...ProducerOption) *Producer {
	p := &Producer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return newProducer(producer, p)
}

func newProducer(producer sarama.AsyncProducer, p *Producer) *Producer {
	p.producer = producer
	p.done = make(chan struct{})
	go p.drain()
	return p
}

// Send submits value for asynchronous delivery to topic. It returns once the
// message is accepted by the client or ctx is done.
func (p *Producer) Send(ctx context.Context, topic string, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrProducerClosed
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Value:   sarama.ByteEncoder(value),
		Headers: p.headers,
	}

	select {
	case p.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send message: %w", ctx.Err())
	}
}

// Close flushes buffered messages and waits for outstanding delivery results.
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.producer.AsyncClose()
	<-p.done
	return nil
}

// drain consumes delivery results until both channels are closed.
func (p *Producer) drain() {
	defer close(p.done)

	successes, errs := p.producer.Successes(), p.producer.Errors()
	for successes != nil || errs != nil {
		select {
		case msg, ok := <-successes:
			if !ok {
				successes = nil
				continue
			}
			metrics.DeliverySuccesses.WithLabelValues(msg.Topic).Inc()
			p.logger.Debug("message delivered",
				zap.String("topic", msg.Topic),
				zap.Int32("partition", msg.Partition),
				zap.Int64("offset", msg.Offset))
		case perr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			topic := ""
			if perr.Msg != nil {
				topic = perr.Msg.Topic
			}
			metrics.DeliveryErrors.WithLabelValues(topic).Inc()
			p.logger.Error("message delivery failed", zap.String("topic", topic), zap.Error(perr.Err))
		}
	}
}
