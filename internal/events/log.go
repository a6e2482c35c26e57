package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher only logs events. Used when no brokers are configured.
type LogPublisher struct {
	log *zap.Logger
}

// NewLogPublisher constructs a LogPublisher.
func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish logs metadata; payloads may carry contact data and are not logged.
func (p *LogPublisher) Publish(_ context.Context, eventType, key string, payload []byte) error {
	p.log.Info("event",
		zap.String("type", eventType),
		zap.String("key", key),
		zap.Int("bytes", len(payload)),
	)
	return nil
}
