package repos

import (
	"github.com/maatchaa/maatchaa-backend/internal/data/repos/catalog"
	"github.com/maatchaa/maatchaa-backend/internal/data/repos/creators"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepo = catalog.ProductRepo
type CreatorVideoRepo = creators.CreatorVideoRepo
type ProductCreatorMatchRepo = creators.ProductCreatorMatchRepo

func NewProductRepo(db *gorm.DB, log *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, log)
}

func NewCreatorVideoRepo(db *gorm.DB, log *logger.Logger) CreatorVideoRepo {
	return creators.NewCreatorVideoRepo(db, log)
}

func NewProductCreatorMatchRepo(db *gorm.DB, log *logger.Logger) ProductCreatorMatchRepo {
	return creators.NewProductCreatorMatchRepo(db, log)
}
