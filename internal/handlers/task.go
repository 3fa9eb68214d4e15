package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/dto"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/services"
)

// TaskHandler coordinates task HTTP handlers, including comments and
// attachment metadata.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a task inside a project.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateRequest struct {
		Title       string     `json:"title" binding:"required,max=255"`
		Description string     `json:"description"`
		StartDate   *time.Time `json:"start_date"`
		DueDate     *time.Time `json:"due_date"`
	}

	p, ok := principal(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(p, services.CreateTaskInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns a project's tasks in position order. An optional status
// query narrows the result.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var status *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		s := models.TaskStatus(raw)
		status = &s
	}

	tasks, err := h.taskService.ListByProject(p, projectID, status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// GetTask returns one task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(p, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask modifies a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateRequest struct {
		Title       *string            `json:"title" binding:"omitempty,max=255"`
		Description *string            `json:"description"`
		Status      *models.TaskStatus `json:"status"`
		StartDate   *time.Time         `json:"start_date"`
		DueDate     *time.Time         `json:"due_date"`
		ClearDates  bool               `json:"clear_dates"`
	}

	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Update(p, id, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		ClearDates:  req.ClearDates,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task and its dependents.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(p, id); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// AddComment attaches a comment to a task.
func (h *TaskHandler) AddComment(c *gin.Context) {
	type CommentRequest struct {
		Body string `json:"body" binding:"required"`
	}

	p, ok := principal(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.taskService.AddComment(p, taskID, req.Body)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// ListComments returns a task's comments.
func (h *TaskHandler) ListComments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	comments, err := h.taskService.ListComments(p, taskID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": dto.ToCommentDTOs(comments)})
}

// DeleteComment removes a comment.
func (h *TaskHandler) DeleteComment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	if err := h.taskService.DeleteComment(p, commentID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// AddAttachment records file metadata against a task.
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	type AttachmentRequest struct {
		FileName  string `json:"file_name" binding:"required,max=255"`
		FilePath  string `json:"file_path" binding:"required,max=1024"`
		SizeBytes int64  `json:"size_bytes" binding:"gte=0"`
	}

	p, ok := principal(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	attachment, err := h.taskService.AddAttachment(p, taskID, services.AddAttachmentInput{
		FileName:  req.FileName,
		FilePath:  req.FilePath,
		SizeBytes: req.SizeBytes,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAttachmentDTO(*attachment))
}

// ListAttachments returns a task's attachment metadata.
func (h *TaskHandler) ListAttachments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	attachments, err := h.taskService.ListAttachments(p, taskID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attachments": dto.ToAttachmentDTOs(attachments)})
}

// DeleteAttachment removes attachment metadata.
func (h *TaskHandler) DeleteAttachment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachmentId")
	if !ok {
		return
	}

	if err := h.taskService.DeleteAttachment(p, attachmentID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted"})
}
