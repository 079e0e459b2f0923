package server

import (
	"net/http"

	"github.com/playrise/shopsim-warehouse-service/internal/apperr"
	fulfillmentdto "github.com/playrise/shopsim-warehouse-service/internal/fulfillment/dto"
	inventorydto "github.com/playrise/shopsim-warehouse-service/internal/inventory/dto"
	listingdto "github.com/playrise/shopsim-warehouse-service/internal/listing/dto"
	"github.com/playrise/shopsim-warehouse-service/internal/model"
)

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var input listingdto.CreateListingInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, err)
		return
	}
	input.CompanyID = companyID(r)

	l, err := s.Listings.Create(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var input listingdto.UpdatePriceInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, err)
		return
	}
	input.CompanyID = companyID(r)
	input.ListingID = r.PathValue("id")

	l, err := s.Listings.UpdatePrice(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	var input inventorydto.StockInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, err)
		return
	}
	input.CompanyID = companyID(r)

	item, err := s.Inventory.Stock(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	warehouseID := r.URL.Query().Get("warehouse_id")
	if warehouseID == "" {
		s.writeError(w, apperr.Validationf("warehouse_id is required"))
		return
	}

	items, err := s.Inventory.ListItems(r.Context(), companyID(r), warehouseID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &inventorydto.MovementFilters{
		WarehouseID: q.Get("warehouse_id"),
		ProductID:   q.Get("product_id"),
		SourceType:  q.Get("source_type"),
	}

	movements, err := s.Inventory.ListMovements(r.Context(), companyID(r), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, movements)
}

type advanceRequest struct {
	DayKey        string   `json:"day_key"`
	SettlementIDs []string `json:"settlement_ids"`
}

func (s *Server) handleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.Advancer.AdvanceDay(r.Context(), companyID(r), req.DayKey, req.SettlementIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFulfill(w http.ResponseWriter, r *http.Request) {
	var input fulfillmentdto.FulfillInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, err)
		return
	}
	input.CompanyID = companyID(r)

	result, err := s.Fulfillments.Fulfill(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClearBacklog(w http.ResponseWriter, r *http.Request) {
	var input fulfillmentdto.ClearBacklogInput
	if err := decodeBody(r, &input); err != nil {
		s.writeError(w, err)
		return
	}
	input.CompanyID = companyID(r)

	result, err := s.Fulfillments.ClearBacklog(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleApplyReturns(w http.ResponseWriter, r *http.Request) {
	result, err := s.Settlements.ApplyReturns(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = model.CurrencyUSD
	}

	balance, err := s.Ledger.Balance(r.Context(), companyID(r), currency)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"company_id": companyID(r),
		"currency":   currency,
		"balance":    balance,
	})
}

func (s *Server) handleDemandReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	warehouseID := q.Get("warehouse_id")
	dayKey := q.Get("day")
	if warehouseID == "" || dayKey == "" {
		s.writeError(w, apperr.Validationf("warehouse_id and day are required"))
		return
	}

	lines, err := s.Listings.DemandReport(r.Context(), companyID(r), warehouseID, dayKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lines)
}
