package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/edgeflare/fakeuser/pkg/metrics"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func mockConfig() *sarama.Config {
	conf := mocks.NewTestConfig()
	conf.Producer.Return.Successes = true
	conf.Producer.Return.Errors = true
	return conf
}

func TestProducerSend(t *testing.T) {
	const topic = "producer-send-test"
	logger, logs := newTestLogger()

	mp := mocks.NewAsyncProducer(t, mockConfig())
	mp.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != topic {
			return errors.New("unexpected topic " + msg.Topic)
		}
		v, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		if string(v) != "first" {
			return errors.New("unexpected value " + string(v))
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "application/avro" {
			return errors.New("missing content-type header")
		}
		return nil
	})
	mp.ExpectInputAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerFrom(mp, WithLogger(logger), WithContentType("application/avro"))

	require.NoError(t, p.Send(context.Background(), topic, []byte("first")))
	// delivery failures are not reported to the sender
	require.NoError(t, p.Send(context.Background(), topic, []byte("second")))
	require.NoError(t, p.Close())

	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.DeliverySuccesses.WithLabelValues(topic)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.DeliveryErrors.WithLabelValues(topic)))

	failed := logs.FilterMessage("message delivery failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, topic, failed[0].ContextMap()["topic"])
}

func TestProducerSendAfterClose(t *testing.T) {
	p := NewProducerFrom(mocks.NewAsyncProducer(t, mockConfig()))
	require.NoError(t, p.Close())
	// closing twice is a no-op
	require.NoError(t, p.Close())

	err := p.Send(context.Background(), "closed", []byte("x"))
	assert.ErrorIs(t, err, ErrProducerClosed)
}

// blockingProducer never reads its input.
type blockingProducer struct {
	sarama.AsyncProducer
	input     chan *sarama.ProducerMessage
	successes chan *sarama.ProducerMessage
	errors    chan *sarama.ProducerError
}

func newBlockingProducer() *blockingProducer {
	return &blockingProducer{
		input:     make(chan *sarama.ProducerMessage),
		successes: make(chan *sarama.ProducerMessage),
		errors:    make(chan *sarama.ProducerError),
	}
}

func (b *blockingProducer) Input() chan<- *sarama.ProducerMessage     { return b.input }
func (b *blockingProducer) Successes() <-chan *sarama.ProducerMessage { return b.successes }
func (b *blockingProducer) Errors() <-chan *sarama.ProducerError      { return b.errors }
func (b *blockingProducer) AsyncClose() {
	close(b.successes)
	close(b.errors)
}

func TestProducerSendContextCanceled(t *testing.T) {
	p := NewProducerFrom(newBlockingProducer())
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Send(ctx, "blocked", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProducerInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = "bogus"
	_, err := NewProducer(context.Background(), &cfg)
	assert.Error(t, err)
}

func TestNewProducerUnreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Brokers = []string{"127.0.0.1:1"}
	cfg.ConnectRetry = 0
	_, err := NewProducer(context.Background(), &cfg)
	assert.Error(t, err)
}
