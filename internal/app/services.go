package app

import (
	"github.com/maatchaa/maatchaa-backend/internal/discovery"
	"github.com/maatchaa/maatchaa-backend/internal/observability"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
	"github.com/maatchaa/maatchaa-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Products services.ProductService
	Matches  services.MatchService
	Search   services.SearchService
	Worker   *discovery.Worker
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	worker, err := discovery.NewWorker(log, cfg.Discovery, discovery.Deps{
		Source:     clients.YouTube,
		Classifier: clients.Classifier,
		Keywords:   discovery.NewKeywordGenerator(log, clients.OpenAI),
		Products:   reposet.Product,
		Videos:     reposet.CreatorVideo,
		Matches:    reposet.Match,
		Vectors:    clients.Vectors,
		Embedder:   clients.OpenAI,
		Events:     clients.events(),
		Metrics:    metrics,
	})
	if err != nil {
		return Services{}, err
	}

	return Services{
		Auth:     services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Products: services.NewProductService(log, reposet.Product),
		Matches:  services.NewMatchService(log, reposet.Product, reposet.CreatorVideo, reposet.Match),
		Search:   services.NewSearchService(log, clients.OpenAI, clients.Vectors, worker.Config().VectorNamespace),
		Worker:   worker,
	}, nil
}
