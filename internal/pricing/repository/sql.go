package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) FindBand(ctx context.Context, categoryID, quality string, tier int) (*model.DemandBand, error) {
	var band model.DemandBand
	query := r.DB.Rebind(`
        SELECT * FROM demand_bands
        WHERE category_id = ? AND quality = ? AND tier = ?
        LIMIT 1
    `)
	err := r.DB.GetContext(ctx, &band, query, categoryID, quality, tier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &band, nil
}

func (r *SQLRepository) FindCategoryParent(ctx context.Context, categoryID string) (*string, error) {
	var cat model.Category
	query := r.DB.Rebind(`SELECT * FROM categories WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &cat, query, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cat.ParentID, nil
}

func (r *SQLRepository) ListPriceSteps(ctx context.Context) ([]model.PriceMultiplierStep, error) {
	var steps []model.PriceMultiplierStep
	err := r.DB.SelectContext(ctx, &steps, `SELECT * FROM price_multiplier_steps ORDER BY max_index ASC`)
	return steps, err
}

func (r *SQLRepository) FindSeasonFactor(ctx context.Context, categoryID string, month int) (*model.SeasonFactor, error) {
	var factor model.SeasonFactor
	query := r.DB.Rebind(`SELECT * FROM season_factors WHERE category_id = ? AND month = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &factor, query, categoryID, month)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &factor, nil
}
