package db

import (
	"fmt"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Product{},
		&types.CreatorVideo{},
		&types.ProductCreatorMatch{},
	)
}

// EnsureDiscoveryIndexes adds the Postgres-only indexes the discovery reads
// lean on. Uniqueness itself comes from the model tags.
func EnsureDiscoveryIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_company_products_created_id
		ON company_products (created_at, id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_company_products_created_id: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_pcm_product_score
		ON product_creator_matches (product_id, relevance_score DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_pcm_product_score: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_company_products_missing_keywords
		ON company_products (id)
		WHERE search_keywords IS NULL OR search_keywords = '[]'::jsonb;
	`).Error; err != nil {
		return fmt.Errorf("create idx_company_products_missing_keywords: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if s.driver != "postgres" {
		return nil
	}
	if err := EnsureDiscoveryIndexes(s.db); err != nil {
		s.log.Error("Discovery index migration failed", "error", err)
		return err
	}
	return nil
}
