package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultPollEvery = 2 * time.Second
	defaultBatchSize = 50
)

var ErrPublish = errors.New("events.publisher: failed to publish outbox batch")

type PublisherConfig struct {
	Brokers     []string
	TopicPrefix string
	PollEvery   time.Duration
	BatchSize   int
}

// Publisher переносит события из outbox_events в kafka.
// Выборка, отправка и отметка о публикации выполняются в одной транзакции:
// если kafka недоступна, события остаются неопубликованными до следующего тика.
type Publisher struct {
	repo      OutboxRepository
	txManager TxManager
	writer    MessageWriter
	logger    Logger
	metrics   Metrics
	cfg       PublisherConfig
}

// NewPublisher создает публикатор. writer может быть nil: тогда он создается из cfg.Brokers.
func NewPublisher(repo OutboxRepository, txManager TxManager, writer MessageWriter, logger Logger, metrics Metrics, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = defaultPollEvery
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if writer == nil && len(cfg.Brokers) > 0 {
		writer = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
	}
	return &Publisher{
		repo:      repo,
		txManager: txManager,
		writer:    writer,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Enabled сообщает, настроена ли отправка в kafka
func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

// Run публикует события до отмены ctx
func (p *Publisher) Run(ctx context.Context) {
	if !p.Enabled() {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}
	defer func() {
		if err := p.writer.Close(); err != nil {
			p.logger.Warn("outbox publisher: failed to close kafka writer: %v", err)
		}
	}()

	p.logger.Info("outbox publisher started (poll every %s, batch %d)", p.cfg.PollEvery, p.cfg.BatchSize)

	ticker := time.NewTicker(p.cfg.PollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox publisher stopped")
			return
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil {
				p.logger.Error("outbox publish failed: %v", err)
			}
		}
	}
}

// PublishBatch публикует одну пачку и возвращает количество отправленных событий
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	published := make(map[string]int)

	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		records, err := p.repo.FetchUnpublished(ctx, p.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		msgs := make([]kafka.Message, 0, len(records))
		ids := make([]int64, 0, len(records))
		for _, r := range records {
			msg := kafka.Message{
				Topic: p.cfg.TopicPrefix + r.EventType,
				Key:   []byte(r.AggregateID),
				Value: r.Payload,
				Headers: []kafka.Header{
					{Key: "event_id", Value: []byte(strconv.FormatInt(r.ID, 10))},
					{Key: "event_type", Value: []byte(r.EventType)},
					{Key: "aggregate_type", Value: []byte(r.AggregateType)},
				},
			}
			msg.Headers = injectTraceHeaders(ctx, msg.Headers)
			msgs = append(msgs, msg)
			ids = append(ids, r.ID)
		}

		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("write %d messages: %w", len(msgs), err)
		}
		if err := p.repo.MarkPublished(ctx, ids); err != nil {
			return err
		}

		for _, r := range records {
			published[r.EventType]++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	total := 0
	for eventType, n := range published {
		for i := 0; i < n; i++ {
			p.metrics.OutboxPublished(eventType)
		}
		total += n
	}
	return total, nil
}
