package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/service"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
	"github.com/shopspring/decimal"
)

type GroceriesHandler struct {
	GroceryService *service.GroceryService
}

type groceryRequest struct {
	BarcodeNumber       string              `json:"barcode_number"`
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	Category            string              `json:"category"`
	Brand               string              `json:"brand"`
	Size                string              `json:"size"`
	ImageURL            string              `json:"image_url"`
	StoreName           string              `json:"store_name"`
	StorePrice          decimal.NullDecimal `json:"store_price" swaggertype:"string"`
	ManuallyEntered     bool                `json:"manually_entered"`
	BarcodeLookupFailed bool                `json:"barcode_lookup_failed"`
}

// HandleList serves GET /api/groceries/.
//
//	@Summary	List saved groceries
//	@Tags		Groceries
//	@Produce	json
//	@Success	200	{array}		authsdk.Grocery
//	@Failure	401	{object}	map[string]any	"Token not valid"
//	@Security	BearerAuth
//	@Router		/api/groceries/ [get]
func (h *GroceriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	uid, ok := userID(r)
	if !ok {
		httpx.WriteTokenError(w, httpx.MessageTokenInvalid)
		return
	}

	groceries, err := h.GroceryService.ListGroceries(ctx, uid)
	if err != nil {
		writeError(w, log, err)
		return
	}

	out := make([]authsdk.Grocery, 0, len(groceries))
	for _, g := range groceries {
		out = append(out, toGrocery(g))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate serves POST /api/groceries/.
//
//	@Summary	Save a grocery
//	@Tags		Groceries
//	@Accept		json
//	@Produce	json
//	@Param		body	body		groceryRequest		true	"Grocery"
//	@Success	201		{object}	authsdk.Grocery
//	@Failure	400		{object}	map[string][]string	"Field errors"
//	@Failure	401		{object}	map[string]any		"Token not valid"
//	@Security	BearerAuth
//	@Router		/api/groceries/ [post]
func (h *GroceriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	uid, ok := userID(r)
	if !ok {
		httpx.WriteTokenError(w, httpx.MessageTokenInvalid)
		return
	}

	var req groceryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.GroceryService.AddGrocery(ctx, uid, domain.Grocery{
		BarcodeNumber:       req.BarcodeNumber,
		Name:                req.Name,
		Description:         req.Description,
		Category:            req.Category,
		Brand:               req.Brand,
		Size:                req.Size,
		ImageURL:            req.ImageURL,
		StoreName:           req.StoreName,
		StorePrice:          req.StorePrice,
		ManuallyEntered:     req.ManuallyEntered,
		BarcodeLookupFailed: req.BarcodeLookupFailed,
	})
	if err != nil {
		writeError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toGrocery(created))
}

// HandleDelete serves DELETE /api/groceries/{id}/.
//
//	@Summary	Delete a saved grocery
//	@Tags		Groceries
//	@Param		id	path	int	true	"Grocery ID"
//	@Success	204
//	@Failure	404	{object}	map[string]string	"Not found"
//	@Security	BearerAuth
//	@Router		/api/groceries/{id}/ [delete]
func (h *GroceriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	uid, ok := userID(r)
	if !ok {
		httpx.WriteTokenError(w, httpx.MessageTokenInvalid)
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	if err := h.GroceryService.DeleteGrocery(ctx, uid, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteDetail(w, http.StatusNotFound, detailNotFound)
			return
		}
		writeError(w, log, err)
		return
	}

	log.Info("grocery deleted", slog.Int64("grocery_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func toGrocery(g domain.Grocery) authsdk.Grocery {
	return authsdk.Grocery{
		ID:                  g.ID,
		BarcodeNumber:       g.BarcodeNumber,
		Name:                g.Name,
		Description:         g.Description,
		Category:            g.Category,
		Brand:               g.Brand,
		Size:                g.Size,
		ImageURL:            g.ImageURL,
		StoreName:           g.StoreName,
		StorePrice:          g.StorePrice,
		ManuallyEntered:     g.ManuallyEntered,
		BarcodeLookupFailed: g.BarcodeLookupFailed,
		CreatedAt:           g.CreatedAt,
	}
}
