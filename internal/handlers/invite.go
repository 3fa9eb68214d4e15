package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/dto"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/services"
)

// InviteHandler coordinates invite HTTP handlers.
type InviteHandler struct {
	inviteService *services.InviteService
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(inviteService *services.InviteService) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
	}
}

// CreateInvite issues an invite into the caller's tenant.
func (h *InviteHandler) CreateInvite(c *gin.Context) {
	type CreateRequest struct {
		Email string      `json:"email" binding:"required,email"`
		Role  models.Role `json:"role" binding:"required"`
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

	invite, err := h.inviteService.Create(p, services.CreateInviteInput{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInviteDTO(*invite))
}

// ListInvites returns the invites of the caller's tenant.
func (h *InviteHandler) ListInvites(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	invites, err := h.inviteService.List(p)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invites": dto.ToInviteDTOs(invites)})
}

// RevokeInvite withdraws a pending invite.
func (h *InviteHandler) RevokeInvite(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.inviteService.Revoke(p, id); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite revoked"})
}

// RedeemInvite accepts an invite for the authenticated principal.
func (h *InviteHandler) RedeemInvite(c *gin.Context) {
	type RedeemRequest struct {
		Token string `json:"token" binding:"required"`
	}

	p, ok := principal(c)
	if !ok {
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	invite, err := h.inviteService.Redeem(p, req.Token)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenant_id": invite.TenantID,
		"role":      invite.Role,
	})
}

// ValidateInvite is the unauthenticated token check. It answers with the
// narrow validation shape and nothing else about the invite.
func (h *InviteHandler) ValidateInvite(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		apperrors.BadRequest(c, "Invalid token")
		return
	}

	v, err := h.inviteService.Validate(token)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}
