package handlers

import (
	"github.com/gin-gonic/gin"

	"hunarscan/internal/middleware"
	"hunarscan/internal/models"
	"hunarscan/internal/services"
	"hunarscan/internal/utils"
	"hunarscan/internal/validators"
)

type WorkerHandler struct {
	workerService services.WorkerService
}

func NewWorkerHandler(workerService services.WorkerService) *WorkerHandler {
	return &WorkerHandler{
		workerService: workerService,
	}
}

func (h *WorkerHandler) CreateWorker(c *gin.Context) {
	var request validators.WorkerCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	worker, err := h.workerService.CreateWorker(c.Request.Context(), middleware.GetIdentity(c), &request, c.Request.Host)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Worker profile created", gin.H{
		"workerId":   worker.ID,
		"profileUrl": worker.ProfileURL,
	})
}

func (h *WorkerHandler) GetWorker(c *gin.Context) {
	worker, err := h.workerService.GetWorker(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Worker retrieved successfully", worker)
}

// SearchWorkers filters by ?trade= and ?location=.
func (h *WorkerHandler) SearchWorkers(c *gin.Context) {
	workers, err := h.workerService.SearchWorkers(c.Request.Context(), models.WorkerFilter{
		Trade:    c.Query("trade"),
		Location: c.Query("location"),
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Workers retrieved successfully", workers, &utils.Meta{Count: len(workers)})
}
