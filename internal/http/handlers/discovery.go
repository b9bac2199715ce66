package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maatchaa/maatchaa-backend/internal/discovery"
	"github.com/maatchaa/maatchaa-backend/internal/http/response"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

const maxTrackedTasks = 256

type DiscoveryTrigger interface {
	Trigger(ctx context.Context, req discovery.TriggerRequest) *discovery.Task
}

// DiscoveryHandler starts triggered passes. Passes run on baseCtx, the
// process lifetime context, so they outlive the request that started them.
type DiscoveryHandler struct {
	log     *logger.Logger
	baseCtx context.Context
	worker  DiscoveryTrigger

	mu    sync.Mutex
	tasks map[uuid.UUID]*discovery.Task
	order []uuid.UUID
}

func NewDiscoveryHandler(baseCtx context.Context, log *logger.Logger, worker DiscoveryTrigger) *DiscoveryHandler {
	return &DiscoveryHandler{
		log:     log.With("handler", "DiscoveryHandler"),
		baseCtx: baseCtx,
		worker:  worker,
		tasks:   map[uuid.UUID]*discovery.Task{},
	}
}

type triggerRequest struct {
	CompanyID  string `json:"company_id" binding:"required"`
	ShopDomain string `json:"shop_domain"`
}

// POST /api/discovery/trigger
func (h *DiscoveryHandler) Trigger(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	companyID, err := uuid.Parse(strings.TrimSpace(req.CompanyID))
	if err != nil || companyID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_company_id", fmt.Errorf("company_id must be a uuid"))
		return
	}

	task := h.worker.Trigger(h.baseCtx, discovery.TriggerRequest{
		CompanyID:  companyID,
		ShopDomain: strings.TrimSpace(req.ShopDomain),
	})
	h.track(task)

	response.RespondAccepted(c, gin.H{
		"status":     "accepted",
		"task_id":    task.ID,
		"company_id": companyID,
	})
}

// GET /api/discovery/tasks/:id
func (h *DiscoveryHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_task_id", err)
		return
	}
	h.mu.Lock()
	task := h.tasks[id]
	h.mu.Unlock()
	if task == nil {
		response.RespondError(c, http.StatusNotFound, "task_not_found", fmt.Errorf("task %s not found", id))
		return
	}
	if !task.Finished() {
		response.RespondOK(c, gin.H{"task_id": task.ID, "status": "running"})
		return
	}
	stats, err := task.Wait(c.Request.Context())
	out := gin.H{"task_id": task.ID, "status": "done", "stats": stats.Map()}
	if err != nil {
		out["status"] = "failed"
		out["error"] = err.Error()
	}
	response.RespondOK(c, out)
}

func (h *DiscoveryHandler) track(task *discovery.Task) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks[task.ID] = task
	h.order = append(h.order, task.ID)
	for len(h.order) > maxTrackedTasks {
		delete(h.tasks, h.order[0])
		h.order = h.order[1:]
	}
}
