package transport

import (
	"net/http"
	"strconv"
	"time"

	"shop-ledger/internal/domain"
	"shop-ledger/internal/middleware"
	"shop-ledger/internal/repository"
	"shop-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordTransactionRequest represents the new-transaction payload
type RecordTransactionRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Shop        string `json:"shop" validate:"required"`
	ProductName string `json:"product_name" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
	UnitPrice   int64  `json:"unit_price" validate:"gte=0"`
	Type        string `json:"transaction_type" validate:"required,oneof=lend borrow"`
}

// TransactionResponse represents one ledger entry on the wire
type TransactionResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Shop        string `json:"shop"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Total       int64  `json:"total"`
	Type        string `json:"transaction_type"`
	Period      string `json:"period"`
}

// TransactionListResponse wraps a filtered ledger listing
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

// TransactionHandler handles HTTP requests for ledger operations
type TransactionHandler struct {
	ledgerService service.LedgerService
	logger        *zap.Logger
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(ledgerService service.LedgerService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// RegisterRoutes registers all transaction routes
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/transactions", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Record)
		r.Delete("/{id}", h.Remove)
	})
}

// List handles filtered ledger retrieval, most recent first
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}

	transactions, err := h.ledgerService.ListTransactions(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	response := TransactionListResponse{
		Transactions: make([]TransactionResponse, 0, len(transactions)),
		Count:        len(transactions),
	}
	for _, tx := range transactions {
		response.Transactions = append(response.Transactions, toTransactionResponse(tx))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Record handles new ledger entries
func (h *TransactionHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordTransactionRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Transaction validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	tx, err := h.ledgerService.RecordTransaction(r.Context(), service.RecordTransactionInput{
		Date:        date,
		Shop:        req.Shop,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Type:        domain.TransactionType(req.Type),
	})
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			respondServiceValidationError(w, ve)
			return
		}
		h.logger.Error("Failed to record transaction", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to record transaction")
		return
	}

	h.logger.Info("Transaction recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("shop", tx.Shop),
		zap.String("transaction_type", string(tx.Type)),
		zap.Int64("total", tx.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// Remove handles transaction deletion. Deleting an id that is already
// gone still returns 204.
func (h *TransactionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := h.ledgerService.RemoveTransaction(r.Context(), id); err != nil {
		h.logger.Error("Failed to remove transaction", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID.String(),
		Date:        tx.Date.Format("2006-01-02"),
		Shop:        tx.Shop,
		ProductName: tx.ProductName,
		Quantity:    tx.Quantity,
		UnitPrice:   tx.UnitPrice,
		Total:       tx.Total,
		Type:        string(tx.Type),
		Period:      tx.Period,
	}
}

// parseTransactionFilter reads the period/shop/type/limit query params.
// It writes a 400 response and returns ok=false on a malformed value.
func parseTransactionFilter(w http.ResponseWriter, r *http.Request) (repository.TransactionFilter, bool) {
	var filter repository.TransactionFilter

	if period := r.URL.Query().Get("period"); period != "" {
		if _, err := time.Parse("2006-01", period); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid period, expected YYYY-MM")
			return filter, false
		}
		filter.Period = &period
	}
	if shop := r.URL.Query().Get("shop"); shop != "" {
		filter.Shop = &shop
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		txType := domain.TransactionType(typ)
		if !txType.Valid() {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid type, expected lend or borrow")
			return filter, false
		}
		filter.Type = &txType
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return filter, false
		}
		filter.Limit = limit
	}

	return filter, true
}

func respondServiceValidationError(w http.ResponseWriter, ve *service.ValidationError) {
	errors := make([]middleware.ValidationError, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		errors = append(errors, middleware.ValidationError{Field: f.Field, Message: f.Message})
	}
	middleware.RespondWithValidationErrors(w, errors)
}
