package poller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Eduardaskuliesa/Alina-workers/internal/actors"
)

// CartClearer is the slice of the cart actor the poller needs.
type CartClearer interface {
	ClearCart(ctx context.Context, userID string) (actors.Result, error)
}

// Poller consumes purchase-completed events and clears the buyer's cart,
// which also disarms any pending abandonment reminder.
type Poller struct {
	carts  CartClearer
	reader *kafka.Reader
	logger *zap.SugaredLogger
}

func NewPoller(carts CartClearer, logger *zap.SugaredLogger, topic string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  "reminder-worker-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{
		carts:  carts,
		reader: reader,
		logger: logger.Named("poller"),
	}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Errorw("failed to read message", "error", err)
			}
			continue
		}
		p.process(ctx, m)
	}
}

func (p *Poller) Close() error {
	if err := p.reader.Close(); err != nil {
		return fmt.Errorf("failed to close kafka reader: %w", err)
	}
	return nil
}

func (p *Poller) process(ctx context.Context, m kafka.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		p.logger.Errorw("failed to parse message", "error", err)
		return
	}

	userID, ok := payload["user_id"].(string)
	if !ok || userID == "" {
		p.logger.Warnw("message missing user_id", "offset", m.Offset)
		return
	}

	if _, err := p.carts.ClearCart(ctx, userID); err != nil {
		p.logger.Errorw("failed to clear cart after purchase", "user", userID, "error", err)
		return
	}
	p.logger.Infow("cart cleared after purchase", "user", userID)
}
