package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/tasks"
)

// TaskTypeCleanupUploads is the :type accepted by POST /api/tasks/:type/run.
const TaskTypeCleanupUploads = "cleanup-uploads"

// TasksController handles task queue management endpoints.
type TasksController struct {
	cleanup CleanupRunner
	status  TaskStatusReader
}

// NewTasksController creates a new TasksController.
func NewTasksController(cleanup CleanupRunner, status TaskStatusReader) *TasksController {
	return &TasksController{cleanup: cleanup, status: status}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"task_types": []TaskTypeInfo{
			{
				Type:        TaskTypeCleanupUploads,
				Description: "Remove uploaded covers that no book references",
				Queue:       tasks.CleanupOrphanUploadsQueue,
			},
		},
	})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.status.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}

// RunTask handles POST /api/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")
	if taskType != TaskTypeCleanupUploads {
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	id, err := tc.cleanup.RunNow()
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	respondAccepted(c, "task enqueued", gin.H{
		"task_id": id,
		"type":    taskType,
	})
}
