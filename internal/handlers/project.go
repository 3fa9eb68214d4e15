package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/dto"
	"github.com/taskflowhq/taskflow-api/internal/services"
	"github.com/taskflowhq/taskflow-api/internal/utils"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a tenant or personal project.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateRequest struct {
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
		Personal    bool   `json:"personal"`
	}

	p, ok := principal(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(p, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Personal:    req.Personal,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns every project visible to the caller.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	projects, total, err := h.projectService.List(p, params.Page, params.Limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetProject returns one project.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(p, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject modifies a project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	type UpdateRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=255"`
		Description *string `json:"description"`
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

	project, err := h.projectService.Update(p, id, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and its whole subtree.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(p, id); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
