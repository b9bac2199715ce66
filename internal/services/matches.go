package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/maatchaa/maatchaa-backend/internal/data/repos"
	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	apperrors "github.com/maatchaa/maatchaa-backend/internal/pkg/errors"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

const (
	DefaultMatchLimit = 50
	MaxMatchLimit     = 200
)

// ProductMatch is a stored link joined with the creator video it points to.
// Video is nil when the video row has gone missing.
type ProductMatch struct {
	Match *types.ProductCreatorMatch `json:"match"`
	Video *types.CreatorVideo        `json:"video,omitempty"`
}

type MatchService interface {
	ListForProduct(ctx context.Context, productID uuid.UUID, limit int) (*types.Product, []ProductMatch, error)
}

type matchService struct {
	log      *logger.Logger
	products repos.ProductRepo
	videos   repos.CreatorVideoRepo
	matches  repos.ProductCreatorMatchRepo
}

func NewMatchService(log *logger.Logger, products repos.ProductRepo, videos repos.CreatorVideoRepo, matches repos.ProductCreatorMatchRepo) MatchService {
	return &matchService{
		log:      log.With("service", "MatchService"),
		products: products,
		videos:   videos,
		matches:  matches,
	}
}

func (s *matchService) ListForProduct(ctx context.Context, productID uuid.UUID, limit int) (*types.Product, []ProductMatch, error) {
	if productID == uuid.Nil {
		return nil, nil, fmt.Errorf("product id required: %w", apperrors.ErrInvalidArgument)
	}
	switch {
	case limit <= 0:
		limit = DefaultMatchLimit
	case limit > MaxMatchLimit:
		limit = MaxMatchLimit
	}

	product, err := s.products.GetByID(ctx, nil, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, nil, fmt.Errorf("product %s: %w", productID, apperrors.ErrNotFound)
	}

	links, err := s.matches.ListByProductID(ctx, nil, productID, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("list matches: %w", err)
	}
	ids := make([]string, 0, len(links))
	for _, m := range links {
		ids = append(ids, m.VideoID)
	}
	videos, err := s.videos.GetByVideoIDs(ctx, nil, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load videos: %w", err)
	}
	byID := make(map[string]*types.CreatorVideo, len(videos))
	for _, v := range videos {
		byID[v.VideoID] = v
	}

	out := make([]ProductMatch, 0, len(links))
	for _, m := range links {
		v := byID[m.VideoID]
		if v == nil {
			s.log.Warn("match references missing video", "product_id", productID, "video_id", m.VideoID)
		}
		out = append(out, ProductMatch{Match: m, Video: v})
	}
	return product, out, nil
}
