package services

import (
	"context"
	"fmt"

	"github.com/maatchaa/maatchaa-backend/internal/data/repos"
	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

const (
	DefaultProductLimit = 20
	MaxProductLimit     = 100
)

type ProductPage struct {
	Products []*types.Product `json:"products"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type ProductService interface {
	List(ctx context.Context, offset, limit int) (*ProductPage, error)
}

type productService struct {
	log      *logger.Logger
	products repos.ProductRepo
}

func NewProductService(log *logger.Logger, products repos.ProductRepo) ProductService {
	return &productService{log: log.With("service", "ProductService"), products: products}
}

// List pages the catalog in discovery order.
func (s *productService) List(ctx context.Context, offset, limit int) (*ProductPage, error) {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultProductLimit
	case limit > MaxProductLimit:
		limit = MaxProductLimit
	}
	total, err := s.products.Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	items, err := s.products.ListForDiscovery(ctx, nil, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if items == nil {
		items = []*types.Product{}
	}
	return &ProductPage{Products: items, Total: total, Limit: limit, Offset: offset}, nil
}
