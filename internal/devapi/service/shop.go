package service

import (
	"context"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
)

type ShopService struct {
	Store store.Store
}

func (s *ShopService) ListShops(ctx context.Context) ([]domain.Shop, error) {
	return s.Store.Shops().ListShops(ctx)
}

func (s *ShopService) GetShop(ctx context.Context, id int64) (domain.Shop, error) {
	return s.Store.Shops().GetShop(ctx, id)
}
