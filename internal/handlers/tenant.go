package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/dto"
	"github.com/taskflowhq/taskflow-api/internal/middleware"
	"github.com/taskflowhq/taskflow-api/internal/services"
)

// TenantHandler coordinates tenant HTTP handlers.
type TenantHandler struct {
	tenantService *services.TenantService
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
	}
}

// GetTenant returns a tenant visible to the caller.
func (h *TenantHandler) GetTenant(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenantService.Get(p, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTenantDTO(*tenant))
}

// UpdateTenant modifies a tenant's name or settings.
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	type UpdateRequest struct {
		Name     *string `json:"name" binding:"omitempty,max=255"`
		Settings *string `json:"settings"`
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

	tenant, err := h.tenantService.Update(p, id, services.UpdateTenantInput{
		Name:     req.Name,
		Settings: req.Settings,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTenantDTO(*tenant))
}

// ArchiveTenant flips a tenant to archived.
func (h *TenantHandler) ArchiveTenant(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenantService.Archive(p, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTenantDTO(*tenant))
}

// DeleteTenant hard-deletes a tenant and everything scoped to it.
func (h *TenantHandler) DeleteTenant(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.tenantService.HardDelete(p, id); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tenant deleted"})
}

// ListMembers returns the tenant's principals.
func (h *TenantHandler) ListMembers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Membership gate before any row is touched. Answers 404, never 403.
	if dir, ok := middleware.GetDirectorySession(c); ok {
		member, err := dir.BelongsTo(p.ID, id)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		if !member {
			apperrors.NotFound(c, "Tenant not found")
			return
		}
	}

	members, err := h.tenantService.ListMembers(p, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": dto.ToPrincipalDTOs(members)})
}
