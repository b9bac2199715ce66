package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/ctxutil"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// KeywordStore is the catalog surface used by the keyword back-fill.
type KeywordStore interface {
	ListMissingKeywords(ctx context.Context, tx *gorm.DB) ([]*types.Product, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Product, error)
	UpdateSearchKeywords(ctx context.Context, tx *gorm.DB, id uuid.UUID, keywords []string) error
}

type BackfillOptions struct {
	// All regenerates keywords for every product, not only those missing them.
	All bool
	// Simple skips the model and uses title extraction only.
	Simple bool
	// Pace is the delay between model calls.
	Pace time.Duration
}

type BackfillResult struct {
	Total   int
	Updated int
	Empty   int
	Failed  int
}

// BackfillKeywords writes search keywords for catalog products. A failed
// update is counted and the run continues.
func BackfillKeywords(ctx context.Context, log *logger.Logger, store KeywordStore, gen *KeywordGenerator, opts BackfillOptions) (BackfillResult, error) {
	ctx = ctxutil.Default(ctx)
	log = log.With("component", "KeywordBackfill")
	var (
		products []*types.Product
		err      error
		res      BackfillResult
	)
	if opts.All {
		products, err = store.ListAll(ctx, nil)
	} else {
		products, err = store.ListMissingKeywords(ctx, nil)
	}
	if err != nil {
		return res, fmt.Errorf("list products: %w", err)
	}
	res.Total = len(products)
	log.Info("Keyword back-fill started", "products", res.Total, "all", opts.All, "simple", opts.Simple)

	for i, p := range products {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var kws []string
		if opts.Simple || gen == nil {
			kws = SimpleKeywords(p.Title)
		} else {
			kws = gen.Generate(ctx, p.Title, p.Description, p.ProductType)
		}
		if len(kws) == 0 {
			res.Empty++
			log.Warn("No keywords generated", "product_id", p.ID.String(), "title", p.Title)
			continue
		}
		if err := store.UpdateSearchKeywords(ctx, nil, p.ID, kws); err != nil {
			res.Failed++
			log.Warn("Keyword update failed", "product_id", p.ID.String(), "error", err)
			continue
		}
		res.Updated++
		log.Info("Keywords updated", "product_id", p.ID.String(), "keywords", kws)

		if !opts.Simple && gen != nil && i < len(products)-1 {
			if err := ctxutil.Sleep(ctx, opts.Pace); err != nil {
				return res, err
			}
		}
	}
	log.Info("Keyword back-fill complete", "updated", res.Updated, "empty", res.Empty, "failed", res.Failed)
	return res, nil
}
