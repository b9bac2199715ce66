package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/domain/catalog"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type ProductRepo interface {
	Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Product, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	ListForDiscovery(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Product, error)
	ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, shopDomain string, limit int) ([]*types.Product, error)
	ListMissingKeywords(ctx context.Context, tx *gorm.DB) ([]*types.Product, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Product, error)
	UpdateSearchKeywords(ctx context.Context, tx *gorm.DB, id uuid.UUID, keywords []string) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (r *productRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := r.tx(tx).WithContext(ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Product, error) {
	var p types.Product
	err := r.tx(tx).WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	if err := r.tx(tx).WithContext(ctx).Model(&types.Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ListForDiscovery pages through the catalog in a stable order.
func (r *productRepo) ListForDiscovery(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Product, error) {
	var results []*types.Product
	if limit <= 0 {
		return results, nil
	}
	if offset < 0 {
		offset = 0
	}
	if err := r.tx(tx).WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productRepo) ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, shopDomain string, limit int) ([]*types.Product, error) {
	var results []*types.Product
	q := r.tx(tx).WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC, id ASC")
	if shopDomain != "" {
		q = q.Where("shop_domain = ?", shopDomain)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productRepo) ListMissingKeywords(ctx context.Context, tx *gorm.DB) ([]*types.Product, error) {
	all, err := r.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Product, 0, len(all))
	for _, p := range all {
		if len(p.Keywords()) == 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *productRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Product, error) {
	var results []*types.Product
	if err := r.tx(tx).WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productRepo) UpdateSearchKeywords(ctx context.Context, tx *gorm.DB, id uuid.UUID, keywords []string) error {
	if id == uuid.Nil {
		return nil
	}
	return r.tx(tx).WithContext(ctx).
		Model(&types.Product{}).
		Where("id = ?", id).
		Update("search_keywords", catalog.EncodeKeywords(keywords)).Error
}
