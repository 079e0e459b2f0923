// Package server exposes the engine over HTTP/JSON. Company scoping comes
// from the X-Company-ID header; upstream auth is expected to have verified
// it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/playrise/shopsim-warehouse-service/internal/fulfillment"
	"github.com/playrise/shopsim-warehouse-service/internal/inventory"
	"github.com/playrise/shopsim-warehouse-service/internal/ledger"
	"github.com/playrise/shopsim-warehouse-service/internal/listing"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"github.com/playrise/shopsim-warehouse-service/internal/settlement"
	"github.com/playrise/shopsim-warehouse-service/internal/simulation"
)

type Server struct {
	Listings     listing.UseCase
	Inventory    inventory.UseCase
	Fulfillments fulfillment.UseCase
	Settlements  settlement.UseCase
	Ledger       ledger.UseCase
	Advancer     *simulation.Advancer
	Logger       logger.ZapLogger

	httpServer *http.Server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/listings", s.handleCreateListing)
	mux.HandleFunc("PATCH /v1/listings/{id}/price", s.handleUpdatePrice)

	mux.HandleFunc("POST /v1/inventory/stock", s.handleStock)
	mux.HandleFunc("GET /v1/inventory", s.handleListInventory)
	mux.HandleFunc("GET /v1/inventory/movements", s.handleListMovements)

	mux.HandleFunc("POST /v1/simulation/advance", s.handleAdvanceDay)
	mux.HandleFunc("POST /v1/fulfillment/run", s.handleFulfill)
	mux.HandleFunc("POST /v1/fulfillment/rush", s.handleClearBacklog)

	mux.HandleFunc("POST /v1/settlements/{id}/returns", s.handleApplyReturns)

	mux.HandleFunc("GET /v1/wallet/balance", s.handleBalance)
	mux.HandleFunc("GET /v1/debug/demand", s.handleDemandReport)

	return mux
}

func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func companyID(r *http.Request) string {
	return r.Header.Get("X-Company-ID")
}
