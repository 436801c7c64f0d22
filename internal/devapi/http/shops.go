package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/service"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const detailNoShop = "No Shop matches the given query."

type ShopsHandler struct {
	ShopService *service.ShopService
}

// HandleList serves GET /api/shops.
//
//	@Summary	List shops
//	@Tags		Shops
//	@Produce	json
//	@Success	200	{array}	authsdk.Shop
//	@Security	BearerAuth
//	@Router		/api/shops [get]
func (h *ShopsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shops, err := h.ShopService.ListShops(ctx)
	if err != nil {
		writeError(w, slogx.FromContext(ctx), err)
		return
	}

	out := make([]authsdk.Shop, 0, len(shops))
	for _, s := range shops {
		out = append(out, toShop(s))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet serves GET /api/shops/{id}.
func (h *ShopsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusNotFound, detailNoShop)
		return
	}

	shop, err := h.ShopService.GetShop(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteDetail(w, http.StatusNotFound, detailNoShop)
			return
		}
		writeError(w, slogx.FromContext(ctx), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toShop(shop))
}

func toShop(s domain.Shop) authsdk.Shop {
	return authsdk.Shop{
		ID:           s.ID,
		Name:         s.Name,
		AddressLine1: s.AddressLine1,
		AddressLine2: s.AddressLine2,
		City:         s.City,
		State:        s.State,
		PostalCode:   s.PostalCode,
		Country:      s.Country,
		PhoneNumber:  s.PhoneNumber,
		Email:        s.Email,
		Website:      s.Website,
		Description:  s.Description,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		OpeningHours: s.OpeningHours,
	}
}
