package domain

import (
	"github.com/maatchaa/maatchaa-backend/internal/domain/catalog"
	"github.com/maatchaa/maatchaa-backend/internal/domain/creators"
)

type Product = catalog.Product

type CandidateVideo = creators.CandidateVideo
type CreatorVideo = creators.CreatorVideo
type ProductCreatorMatch = creators.ProductCreatorMatch
type Analysis = creators.Analysis
type ClassifyResult = creators.ClassifyResult
type SearchRequest = creators.SearchRequest
type DiscoveryEvent = creators.DiscoveryEvent
