package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maatchaa/maatchaa-backend/internal/http/response"
	"github.com/maatchaa/maatchaa-backend/internal/services"
)

type ProductHandler struct {
	products services.ProductService
	matches  services.MatchService
}

func NewProductHandler(products services.ProductService, matches services.MatchService) *ProductHandler {
	return &ProductHandler{products: products, matches: matches}
}

// GET /api/products?limit=&offset=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	limit := queryInt(c, "limit", services.DefaultProductLimit)
	offset := queryInt(c, "offset", 0)
	page, err := h.products.List(c.Request.Context(), offset, limit)
	if err != nil {
		response.RespondServiceError(c, "list_products_failed", err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/products/:id/matches
func (h *ProductHandler) ListMatches(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}
	product, matches, err := h.matches.ListForProduct(c.Request.Context(), productID, queryInt(c, "limit", services.DefaultMatchLimit))
	if err != nil {
		response.RespondServiceError(c, "list_matches_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"product": product,
		"matches": matches,
		"count":   len(matches),
	})
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
