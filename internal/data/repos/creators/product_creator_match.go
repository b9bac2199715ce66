package creators

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type ProductCreatorMatchRepo interface {
	Exists(ctx context.Context, tx *gorm.DB, productID uuid.UUID, videoID string) (bool, error)
	// CreateIfAbsent inserts the link unless (product_id, video_id) exists.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, m *types.ProductCreatorMatch) (created bool, err error)
	ListByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID, limit int) ([]*types.ProductCreatorMatch, error)
	CountByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int64, error)
}

type productCreatorMatchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductCreatorMatchRepo(db *gorm.DB, baseLog *logger.Logger) ProductCreatorMatchRepo {
	repoLog := baseLog.With("repo", "ProductCreatorMatchRepo")
	return &productCreatorMatchRepo{db: db, log: repoLog}
}

func (r *productCreatorMatchRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *productCreatorMatchRepo) Exists(ctx context.Context, tx *gorm.DB, productID uuid.UUID, videoID string) (bool, error) {
	var n int64
	if err := r.tx(tx).WithContext(ctx).
		Model(&types.ProductCreatorMatch{}).
		Where("product_id = ? AND video_id = ?", productID, videoID).
		Limit(1).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *productCreatorMatchRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, m *types.ProductCreatorMatch) (bool, error) {
	if m == nil || m.ProductID == uuid.Nil || m.VideoID == "" {
		return false, nil
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	res := r.tx(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "video_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByProductID returns links best-first.
func (r *productCreatorMatchRepo) ListByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID, limit int) ([]*types.ProductCreatorMatch, error) {
	var results []*types.ProductCreatorMatch
	q := r.tx(tx).WithContext(ctx).
		Where("product_id = ?", productID).
		Order("relevance_score DESC, created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productCreatorMatchRepo) CountByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int64, error) {
	var n int64
	if err := r.tx(tx).WithContext(ctx).
		Model(&types.ProductCreatorMatch{}).
		Where("product_id = ?", productID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
