package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"github.com/playrise/shopsim-warehouse-service/internal/settlement"
	"github.com/playrise/shopsim-warehouse-service/internal/settlement/dto"
	"go.uber.org/zap"
	"time"
)

type settlementUseCase struct {
	repo   settlement.Repository
	topN   int
	logger logger.ZapLogger
}

func NewSettlementUseCase(repo settlement.Repository, notifyTopN int, log logger.ZapLogger) settlement.UseCase {
	if notifyTopN < 1 {
		notifyTopN = 3
	}
	return &settlementUseCase{
		repo:   repo,
		topN:   notifyTopN,
		logger: log,
	}
}

func (uc *settlementUseCase) ApplyReturns(ctx context.Context, settlementID string) (*dto.ReturnsResult, error) {
	if settlementID == "" {
		return nil, apperr.Validationf("settlement id is required")
	}

	s, err := uc.repo.FindSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperr.NotFoundf("settlement %s", settlementID)
	}

	lines, err := uc.repo.ListLines(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	var restocks []settlement.Restock
	var returned []model.SettlementLine
	var total int64
	for _, line := range lines {
		if line.ReturnQty <= 0 {
			continue
		}
		key := fmt.Sprintf("RETURNS:%s:%s", settlementID, line.ProductID)
		exists, err := uc.repo.MovementExists(ctx, model.SourceReturnsRestock, key)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		restocks = append(restocks, settlement.Restock{
			ProductID:   line.ProductID,
			Qty:         line.ReturnQty,
			MovementKey: key,
		})
		returned = append(returned, line)
		total += line.ReturnQty
	}

	var notification *model.PlayerNotification
	if len(returned) > 0 {
		notification = &model.PlayerNotification{
			ID:        uuid.New().String(),
			CompanyID: s.CompanyID,
			DedupeKey: "RETURNS_NOTIFY:" + settlementID,
			Title:     "Returned stock is back in your warehouse",
			Body:      uc.summarize(returned, total),
			CreatedAt: time.Now().UTC(),
		}
	}

	notified := false
	if len(restocks) > 0 {
		notified, err = uc.repo.ApplyReturns(ctx, s, restocks, total, notification)
		if err != nil {
			return nil, err
		}
	}

	uc.logger.Info("returns reconciled",
		zap.String("settlement_id", settlementID),
		zap.Int64("units", total),
		zap.Int("lines", len(restocks)),
		zap.Bool("notified", notified),
	)
	return &dto.ReturnsResult{
		SettlementID:       settlementID,
		TotalReturnedUnits: total,
		LinesRestocked:     len(restocks),
		NotificationSent:   notified,
	}, nil
}

// summarize names the top-N returned products by quantity with a "+N more"
// trailer for the rest.
func (uc *settlementUseCase) summarize(lines []model.SettlementLine, total int64) string {
	sorted := make([]model.SettlementLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ReturnQty != sorted[j].ReturnQty {
			return sorted[i].ReturnQty > sorted[j].ReturnQty
		}
		return sorted[i].ProductID < sorted[j].ProductID
	})

	shown := len(sorted)
	if shown > uc.topN {
		shown = uc.topN
	}
	parts := make([]string, 0, shown+1)
	for _, line := range sorted[:shown] {
		name := line.ProductName
		if name == "" {
			name = line.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s x%d", name, line.ReturnQty))
	}
	if rest := len(sorted) - shown; rest > 0 {
		parts = append(parts, fmt.Sprintf("+%d more", rest))
	}
	return fmt.Sprintf("%d units restocked: %s", total, strings.Join(parts, ", "))
}
