package events

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64) error
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MessageWriter подмножество *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type Metrics interface {
	OutboxPublished(eventType string)
}
