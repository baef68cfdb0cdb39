package transport

import (
	"net/http"
	"time"

	"shop-ledger/internal/middleware"
	"shop-ledger/internal/repository"
	"shop-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShopListResponse is the configured counterparty list for entry forms
type ShopListResponse struct {
	Shops []string `json:"shops"`
}

// BalanceHandler serves the settlement and statistics views
type BalanceHandler struct {
	ledgerService service.LedgerService
	shops         []string
	logger        *zap.Logger
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(ledgerService service.LedgerService, shops []string, logger *zap.Logger) *BalanceHandler {
	return &BalanceHandler{
		ledgerService: ledgerService,
		shops:         shops,
		logger:        logger,
	}
}

// RegisterRoutes registers the balance, statistics and shops routes
func (h *BalanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/balances", h.Balances)
	r.Get("/api/statistics", h.Statistics)
	r.Get("/api/shops", h.Shops)
}

// Balances handles the settlement report for one period or all time
func (h *BalanceHandler) Balances(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriodParam(w, r)
	if !ok {
		return
	}

	report, err := h.ledgerService.ComputeBalances(r.Context(), repository.TransactionFilter{Period: period})
	if err != nil {
		h.logger.Error("Failed to compute balances", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute balances")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}

// Statistics handles the monthly statistics view
func (h *BalanceHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriodParam(w, r)
	if !ok {
		return
	}

	stats, err := h.ledgerService.Statistics(r.Context(), period)
	if err != nil {
		h.logger.Error("Failed to compute statistics", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// Shops returns the configured counterparty shop names
func (h *BalanceHandler) Shops(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, ShopListResponse{Shops: h.shops})
}

func parsePeriodParam(w http.ResponseWriter, r *http.Request) (*string, bool) {
	period := r.URL.Query().Get("period")
	if period == "" {
		return nil, true
	}
	if _, err := time.Parse("2006-01", period); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid period, expected YYYY-MM")
		return nil, false
	}
	return &period, true
}
