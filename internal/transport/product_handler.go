package transport

import (
	"errors"
	"io"
	"net/http"

	"shop-ledger/internal/csvimport"
	"shop-ledger/internal/domain"
	"shop-ledger/internal/middleware"
	"shop-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxImportSize caps CSV upload bodies at 10 MiB.
const maxImportSize = 10 << 20

// UpsertProductRequest represents the manual product upsert payload
type UpsertProductRequest struct {
	ProductName string `json:"product_name"`
	SKU         string `json:"sku" validate:"required"`
	SupplyPrice int64  `json:"supply_price" validate:"gte=0"`
}

// ProductResponse represents one catalog entry on the wire
type ProductResponse struct {
	ID          string `json:"id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	SupplyPrice int64  `json:"supply_price"`
}

// ProductListResponse wraps the catalog listing with its count
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Count    int               `json:"count"`
}

// ImportErrorResponse is returned when the CSV import fails as a whole
type ImportErrorResponse struct {
	Error string `json:"error"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Upsert)
		r.Delete("/", h.Clear)
		r.Post("/import", h.ImportCSV)
	})
}

// List handles catalog retrieval, sorted by product name
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	response := ProductListResponse{
		Products: make([]ProductResponse, 0, len(products)),
		Count:    len(products),
	}
	for _, p := range products {
		response.Products = append(response.Products, toProductResponse(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Upsert handles manual insert-or-replace keyed on SKU
func (h *ProductHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.UpsertProduct(r.Context(), service.UpsertProductInput{
		ProductName: req.ProductName,
		SKU:         req.SKU,
		SupplyPrice: req.SupplyPrice,
	})
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			respondServiceValidationError(w, ve)
			return
		}
		h.logger.Error("Failed to upsert product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to upsert product")
		return
	}

	h.logger.Info("Product upserted", zap.String("sku", product.SKU))
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// Clear handles unconditional catalog wipe. The two-click confirmation
// belongs to the client; by the time this endpoint is called the user
// already confirmed.
func (h *ProductHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.ClearProducts(r.Context()); err != nil {
		h.logger.Error("Failed to clear products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear products")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportCSV handles batch product import. The CSV comes either as a
// multipart "file" field or as the raw request body. Header resolution
// failure aborts the whole import with 422; row failures only count.
func (h *ProductHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := importBody(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "could not read CSV upload")
		return
	}
	defer body.Close()

	summary, err := h.catalogService.ImportProductsCSV(r.Context(), io.LimitReader(body, maxImportSize))
	if err != nil {
		var headerErr *csvimport.HeaderError
		if errors.As(err, &headerErr) {
			middleware.RespondWithJSON(w, http.StatusUnprocessableEntity, ImportErrorResponse{Error: headerErr.Error()})
			return
		}
		h.logger.Warn("CSV import failed", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusUnprocessableEntity, ImportErrorResponse{Error: err.Error()})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

func importBody(r *http.Request) (io.ReadCloser, error) {
	if err := r.ParseMultipartForm(maxImportSize); err == nil {
		if file, _, ferr := r.FormFile("file"); ferr == nil {
			return file, nil
		}
	}
	return r.Body, nil
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		ProductName: p.ProductName,
		SKU:         p.SKU,
		SupplyPrice: p.SupplyPrice,
	}
}
