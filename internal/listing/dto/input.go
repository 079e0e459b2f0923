package dto

type CreateListingInput struct {
	CompanyID       string  `json:"company_id"`
	WarehouseID     string  `json:"warehouse_id"`
	InventoryItemID string  `json:"inventory_item_id"`
	SalePrice       float64 `json:"sale_price"`
	// ListPrice overrides the product's suggested price when > 0.
	ListPrice float64 `json:"list_price"`
}

type UpdatePriceInput struct {
	CompanyID string  `json:"company_id"`
	ListingID string  `json:"listing_id"`
	SalePrice float64 `json:"sale_price"`
	ListPrice float64 `json:"list_price"`
}
