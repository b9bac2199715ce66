package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maatchaa/maatchaa-backend/internal/http/response"
	"github.com/maatchaa/maatchaa-backend/internal/services"
)

type SearchHandler struct {
	search services.SearchService
}

func NewSearchHandler(search services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type textSearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// POST /api/search/text
func (h *SearchHandler) TextSearch(c *gin.Context) {
	var req textSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	hits, err := h.search.TextSearch(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		response.RespondServiceError(c, "search_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"query": req.Query, "results": hits})
}

// DELETE /api/videos/:video_id/vector
func (h *SearchHandler) RemoveVideo(c *gin.Context) {
	videoID := c.Param("video_id")
	if err := h.search.RemoveVideo(c.Request.Context(), videoID); err != nil {
		response.RespondServiceError(c, "remove_vector_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"video_id": videoID, "removed": true})
}
