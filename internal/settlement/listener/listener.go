package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/playrise/shopsim-warehouse-service/internal/pkg/broker"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"github.com/playrise/shopsim-warehouse-service/internal/settlement"
	"go.uber.org/zap"
)

// SettlementListener consumes close-out events from the billing service and
// triggers returns reconciliation. ApplyReturns is idempotent, so at-least-
// once delivery is fine.
type SettlementListener struct {
	consumer *broker.KafkaConsumer
	uc       settlement.UseCase
	logger   logger.ZapLogger
}

func NewSettlementListener(consumer *broker.KafkaConsumer, uc settlement.UseCase, logger logger.ZapLogger) *SettlementListener {
	return &SettlementListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *SettlementListener) Start(ctx context.Context) {
	l.logger.Info("Starting Settlement Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Settlement Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type SettlementClosedEvent struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Payload   SettlementPayload `json:"payload"`
	Timestamp time.Time         `json:"timestamp"`
}

type SettlementPayload struct {
	SettlementID string `json:"settlement_id"`
	CompanyID    string `json:"company_id"`
}

func (l *SettlementListener) processMessage(ctx context.Context, value []byte) {
	var event SettlementClosedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "SettlementClosed" {
		return
	}

	l.logger.Info("Processing SettlementClosed event", zap.String("settlement_id", event.Payload.SettlementID))

	result, err := l.uc.ApplyReturns(ctx, event.Payload.SettlementID)
	if err != nil {
		l.logger.Error("Failed to apply returns for settlement",
			zap.String("settlement_id", event.Payload.SettlementID),
			zap.Error(err),
		)
		return
	}
	l.logger.Info("Settlement returns applied",
		zap.String("settlement_id", result.SettlementID),
		zap.Int64("units", result.TotalReturnedUnits),
	)
}
