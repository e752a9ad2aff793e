package publisher

import (
	"context"

	"go.uber.org/zap"
)

// DebugSender logs records instead of publishing them. Useful without a broker.
type DebugSender struct {
	Logger *zap.Logger
}

func (d *DebugSender) Send(_ context.Context, topic string, value []byte) error {
	if d.Logger != nil {
		d.Logger.Debug("debug sink",
			zap.String("topic", topic),
			zap.Int("bytes", len(value)))
	}
	return nil
}
