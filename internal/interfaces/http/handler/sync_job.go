package handler

import (
	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultJobHistoryLimit = 20

// SyncJobQueue is the catalog sync scheduler used by SyncJobHandler
type SyncJobQueue interface {
	ScheduleDue(frequency dropship.SyncFrequency, trigger scheduler.JobTrigger) (scheduler.CatalogSyncJob, error)
	ScheduleSupplier(supplierID uuid.UUID, trigger scheduler.JobTrigger) (scheduler.CatalogSyncJob, error)
	GetJobHistory(limit int) []scheduler.CatalogSyncJob
}

// EnqueueSyncJobRequest selects the suppliers of a background sync. With no
// fields set every active supplier with sync enabled is covered.
type EnqueueSyncJobRequest struct {
	SupplierID *uuid.UUID `json:"supplier_id"`
	Frequency  string     `json:"frequency" binding:"omitempty,oneof=manual hourly daily weekly"`
}

// SyncJobHandler handles background catalog sync jobs
type SyncJobHandler struct {
	BaseHandler
	queue SyncJobQueue
}

// NewSyncJobHandler creates a new SyncJobHandler
func NewSyncJobHandler(queue SyncJobQueue) *SyncJobHandler {
	return &SyncJobHandler{queue: queue}
}

// Enqueue godoc
// @Summary      Enqueue a catalog sync job
// @Description  Queue a background sync of one supplier, the suppliers due at a frequency, or every active supplier
// @Tags         catalog-sync
// @Accept       json
// @Produce      json
// @Param        request body EnqueueSyncJobRequest false "Job scope"
// @Success      202 {object} APIResponse[scheduler.CatalogSyncJob]
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/sync/jobs [post]
func (h *SyncJobHandler) Enqueue(c *gin.Context) {
	var req EnqueueSyncJobRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	var (
		job scheduler.CatalogSyncJob
		err error
	)
	if req.SupplierID != nil {
		job, err = h.queue.ScheduleSupplier(*req.SupplierID, scheduler.TriggerManual)
	} else {
		job, err = h.queue.ScheduleDue(dropship.SyncFrequency(req.Frequency), scheduler.TriggerManual)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, job)
}

// History godoc
// @Summary      List finished sync jobs
// @Tags         catalog-sync
// @Produce      json
// @Param        limit query int false "Number of jobs, newest first" default(20)
// @Success      200 {object} APIResponse[[]scheduler.CatalogSyncJob]
// @Security     BearerAuth
// @Router       /dropship/sync/jobs [get]
func (h *SyncJobHandler) History(c *gin.Context) {
	h.Success(c, h.queue.GetJobHistory(queryInt(c, "limit", defaultJobHistoryLimit)))
}
