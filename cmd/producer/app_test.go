package producer

import (
	"context"
	"testing"

	"github.com/edgeflare/fakeuser/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	l, err = newLogger("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))

	l, err = newLogger("none")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.ErrorLevel))

	_, err = newLogger("chatty")
	assert.Error(t, err)
}

func TestNewPublisherDebugSink(t *testing.T) {
	c := config.Default()
	c.Producer.Sink = config.SinkDebug
	c.Producer.Delay = 0
	c.Producer.Topic = "debug-topic"

	pub, closer, err := newPublisher(context.Background(), &c, zap.NewNop())
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, "debug-topic", pub.Topic())
	sent, err := pub.SendRandomUsers(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
}

func TestNewPublisherInvalidConfig(t *testing.T) {
	c := config.Default()
	c.Producer.Sink = config.SinkDebug

	c.Producer.Format = "xml"
	_, _, err := newPublisher(context.Background(), &c, zap.NewNop())
	assert.Error(t, err)

	c.Producer.Format = "json"
	c.Producer.MinAge, c.Producer.MaxAge = 10, 5
	_, _, err = newPublisher(context.Background(), &c, zap.NewNop())
	assert.Error(t, err)
}
