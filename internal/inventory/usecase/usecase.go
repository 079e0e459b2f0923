package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	"github.com/playrise/shopsim-warehouse-service/internal/inventory"
	"github.com/playrise/shopsim-warehouse-service/internal/inventory/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *inventoryUseCase) Stock(ctx context.Context, input *dto.StockInput) (*model.InventoryItem, error) {
	if input.Quantity < 1 {
		return nil, apperr.Validationf("quantity must be at least 1")
	}
	if input.UnitCost < 0 {
		return nil, apperr.Validationf("unit cost must not be negative")
	}
	if input.ProductID == "" {
		return nil, apperr.Validationf("product id is required")
	}

	wh, err := uc.repo.FindWarehouse(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != input.CompanyID {
		return nil, apperr.NotFoundf("warehouse %s", input.WarehouseID)
	}

	ref := input.ReferenceID
	if ref == "" {
		ref = uuid.New().String()
	}

	item, err := uc.repo.StockWithMovement(ctx, &inventory.Purchase{
		CompanyID:   input.CompanyID,
		WarehouseID: wh.ID,
		ProductID:   input.ProductID,
		Quantity:    input.Quantity,
		UnitCost:    input.UnitCost,
		ReferenceID: ref,
		DayKey:      model.DayKeyOf(time.Now()),
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("stock received",
		zap.String("warehouse_id", wh.ID),
		zap.String("product_id", input.ProductID),
		zap.Int64("quantity", input.Quantity),
		zap.Float64("avg_unit_cost", item.AvgUnitCost),
	)
	return item, nil
}

func (uc *inventoryUseCase) GetItem(ctx context.Context, companyID, warehouseID, productID string) (*model.InventoryItem, error) {
	wh, err := uc.repo.FindWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, apperr.NotFoundf("warehouse %s", warehouseID)
	}

	item, err := uc.repo.GetItem(ctx, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		// Zero position rather than an error; the caller treats absence
		// as an empty shelf.
		return &model.InventoryItem{WarehouseID: warehouseID, ProductID: productID}, nil
	}
	return item, nil
}

func (uc *inventoryUseCase) ListItems(ctx context.Context, companyID, warehouseID string) ([]model.InventoryItem, error) {
	wh, err := uc.repo.FindWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, apperr.NotFoundf("warehouse %s", warehouseID)
	}
	return uc.repo.ListItems(ctx, warehouseID)
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, companyID string, filters *dto.MovementFilters) ([]model.InventoryMovement, error) {
	if filters.WarehouseID != "" {
		wh, err := uc.repo.FindWarehouse(ctx, filters.WarehouseID)
		if err != nil {
			return nil, err
		}
		if wh == nil || wh.CompanyID != companyID {
			return nil, apperr.NotFoundf("warehouse %s", filters.WarehouseID)
		}
	}
	return uc.repo.ListMovements(ctx, filters)
}
