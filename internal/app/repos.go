package app

import (
	"gorm.io/gorm"

	"github.com/maatchaa/maatchaa-backend/internal/data/repos"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type Repos struct {
	Product      repos.ProductRepo
	CreatorVideo repos.CreatorVideoRepo
	Match        repos.ProductCreatorMatchRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Product:      repos.NewProductRepo(db, log),
		CreatorVideo: repos.NewCreatorVideoRepo(db, log),
		Match:        repos.NewProductCreatorMatchRepo(db, log),
	}
}
