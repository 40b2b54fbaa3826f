package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"order-composer/internal/infrastructure/logger"
	"order-composer/internal/usecase"
)

const DefaultSubject = "order.submitted"

type NatsPublisher struct {
	nc      *nats.Conn
	subject string
	logger  *logger.Logger
}

type OrderSubmittedEvent struct {
	DraftID     string        `json:"draft_id"`
	OrderID     string        `json:"order_id"`
	TotalAmount int64         `json:"total_amount"`
	Complete    bool          `json:"complete"`
	Succeeded   []ItemCreated `json:"succeeded"`
	Failed      []ItemFailed  `json:"failed"`
	SubmittedAt string        `json:"submitted_at"`
}

type ItemCreated struct {
	SelectionIndex int    `json:"selection_index"`
	ProductID      string `json:"product_id"`
	ItemID         string `json:"item_id"`
	Amount         int64  `json:"amount"`
}

type ItemFailed struct {
	SelectionIndex int    `json:"selection_index"`
	ProductID      string `json:"product_id"`
	Error          string `json:"error"`
}

func NewNatsPublisher(url, subject string, logger *logger.Logger) (*NatsPublisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	nc, err := nats.Connect(url,
		nats.Name("Order Composer"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("Connected to NATS", "url", url, "subject", subject)
	return &NatsPublisher{nc: nc, subject: subject, logger: logger}, nil
}

func NewOrderSubmittedEvent(result *usecase.SubmissionResult, at time.Time) OrderSubmittedEvent {
	event := OrderSubmittedEvent{
		DraftID:     result.DraftID,
		OrderID:     result.OrderID,
		TotalAmount: result.TotalAmount,
		Complete:    result.Complete(),
		Succeeded:   make([]ItemCreated, len(result.Succeeded)),
		Failed:      make([]ItemFailed, len(result.Failed)),
		SubmittedAt: at.Format(time.RFC3339),
	}
	for i, item := range result.Succeeded {
		event.Succeeded[i] = ItemCreated{
			SelectionIndex: item.SelectionIndex,
			ProductID:      item.ProductID,
			ItemID:         item.ItemID,
			Amount:         item.Amount,
		}
	}
	for i, item := range result.Failed {
		event.Failed[i] = ItemFailed{
			SelectionIndex: item.SelectionIndex,
			ProductID:      item.ProductID,
			Error:          item.Err.Error(),
		}
	}
	return event
}

func (p *NatsPublisher) PublishOrderSubmitted(ctx context.Context, result *usecase.SubmissionResult) error {
	data, err := json.Marshal(NewOrderSubmittedEvent(result, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-ctx.Done():
			p.logger.Warn("Context cancelled while publishing to NATS")
			return ctx.Err()
		default:
			err := p.nc.Publish(p.subject, data)
			if err != nil {
				p.logger.Warn("Failed to publish to NATS", "attempt", i+1, "error", err)
				time.Sleep(1 * time.Second)
				continue
			}

			if err := p.nc.FlushTimeout(2 * time.Second); err != nil {
				p.logger.Warn("Failed to flush NATS connection", "error", err)
				continue
			}

			p.logger.Info("Published order.submitted event", "order_id", result.OrderID, "complete", result.Complete())
			return nil
		}
	}

	p.logger.Error("Failed to publish event to NATS after retries", "order_id", result.OrderID)
	return fmt.Errorf("failed to publish event after retries")
}

func (p *NatsPublisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
		p.logger.Info("NATS connection closed")
	}
}
