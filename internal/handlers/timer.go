package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/dto"
	"github.com/taskflowhq/taskflow-api/internal/services"
)

// TimerHandler coordinates timer HTTP handlers.
type TimerHandler struct {
	timerService *services.TimerService
}

// NewTimerHandler creates a new TimerHandler.
func NewTimerHandler(timerService *services.TimerService) *TimerHandler {
	return &TimerHandler{
		timerService: timerService,
	}
}

// StartTimer opens a timer on a task.
func (h *TimerHandler) StartTimer(c *gin.Context) {
	type StartRequest struct {
		TaskID uint64 `json:"task_id" binding:"required"`
	}

	p, ok := principal(c)
	if !ok {
		return
	}

	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	timer, err := h.timerService.Start(p, req.TaskID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimerDTO(*timer))
}

// StopTimer closes the caller's open timer.
func (h *TimerHandler) StopTimer(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	timer, err := h.timerService.Stop(p)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimerDTO(*timer))
}

// CurrentTimer returns the caller's open timer, if any.
func (h *TimerHandler) CurrentTimer(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	timer, err := h.timerService.Current(p)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimerDTO(*timer))
}
