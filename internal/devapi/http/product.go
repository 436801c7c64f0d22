package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/service"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// ProductHandler serves POST /api/product-from-barcode/.
type ProductHandler struct {
	CatalogService *service.CatalogService
}

type productRequest struct {
	BarcodeNumber string `json:"barcode_number"`
}

// ServeHTTP handles POST /api/product-from-barcode/
//
//	@Summary		Look up a barcode
//	@Description	Returns the matching catalog product with its store prices. No match is an empty list.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			body	body		productRequest		true	"Barcode"
//	@Success		200		{object}	authsdk.ProductResult
//	@Failure		400		{object}	map[string][]string	"Invalid barcode"
//	@Failure		401		{object}	map[string]any		"Token not valid"
//	@Security		BearerAuth
//	@Router			/api/product-from-barcode/ [post]
func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.BarcodeNumber) == "" {
		singleError(w, http.StatusBadRequest, "Barcode number is required.")
		return
	}

	product, ok, err := h.CatalogService.LookupBarcode(ctx, req.BarcodeNumber)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBarcode) {
			verr := &service.ValidationError{}
			verr.Add("barcode_number", "Enter a valid barcode.")
			writeValidation(w, verr)
			return
		}
		writeError(w, log, err)
		return
	}

	// No match is still a 200 with an empty list.
	result := authsdk.ProductResult{Products: []authsdk.Product{}}
	if ok {
		result.Products = append(result.Products, toProduct(product))
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func toProduct(p domain.Product) authsdk.Product {
	stores := make([]authsdk.StorePrice, 0, len(p.Prices))
	for _, pp := range p.Prices {
		stores = append(stores, authsdk.StorePrice{
			Name:       pp.Store,
			Price:      pp.Price,
			LastUpdate: pp.LastUpdate,
		})
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return authsdk.Product{
		Title:       p.Title,
		Category:    p.Category,
		Description: p.Description,
		Size:        p.Size,
		Images:      images,
		Stores:      stores,
	}
}
