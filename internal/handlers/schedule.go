package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/dto"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/scheduler"
)

// ScheduleHandler exposes the dependency graph and scheduling operations.
type ScheduleHandler struct {
	scheduler *scheduler.Scheduler
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(s *scheduler.Scheduler) *ScheduleHandler {
	return &ScheduleHandler{
		scheduler: s,
	}
}

// AddDependency links two tasks of the same project.
func (h *ScheduleHandler) AddDependency(c *gin.Context) {
	type DependencyRequest struct {
		FromTaskID uint64                `json:"from_task_id" binding:"required"`
		ToTaskID   uint64                `json:"to_task_id" binding:"required"`
		Kind       models.DependencyKind `json:"kind"`
	}

	p, ok := principal(c)
	if !ok {
		return
	}

	var req DependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Kind == "" {
		req.Kind = models.DependencyFinishToStart
	}

	edge, err := h.scheduler.AddDependency(p, req.FromTaskID, req.ToTaskID, req.Kind)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDependencyDTO(*edge))
}

// RemoveDependency unlinks two tasks.
func (h *ScheduleHandler) RemoveDependency(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	fromID, ok := pathID(c, "fromId")
	if !ok {
		return
	}
	toID, ok := pathID(c, "toId")
	if !ok {
		return
	}

	if err := h.scheduler.RemoveDependency(p, fromID, toID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dependency removed"})
}

// ListDependencies returns every edge of a project.
func (h *ScheduleHandler) ListDependencies(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	edges, err := h.scheduler.ListDependencies(p, projectID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dependencies": dto.ToDependencyDTOs(edges)})
}

// CriticalPath returns the project's critical-path analysis.
func (h *ScheduleHandler) CriticalPath(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.scheduler.CriticalPath(p, projectID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCriticalPathDTO(result))
}

// AutoSchedule fills missing task dates from the dependency graph and
// persists them.
func (h *ScheduleHandler) AutoSchedule(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	assignments, err := h.scheduler.AutoSchedule(p, projectID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// RebuildChain regenerates the auto-dependency chain from the current task
// ordering.
func (h *ScheduleHandler) RebuildChain(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.scheduler.RebuildAutoDependencies(p, projectID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dependency chain rebuilt"})
}

// MoveTask shifts a task one step up or down in the project ordering.
func (h *ScheduleHandler) MoveTask(c *gin.Context) {
	type MoveRequest struct {
		Direction string `json:"direction" binding:"required,oneof=up down"`
	}

	p, ok := principal(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	var err error
	if req.Direction == "up" {
		err = h.scheduler.MoveUp(p, taskID)
	} else {
		err = h.scheduler.MoveDown(p, taskID)
	}
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task moved"})
}
