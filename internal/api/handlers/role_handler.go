package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/services"
	"github.com/yoockh/talentpool/internal/utils"
)

type RoleHandler struct {
	svc services.ProfileService
}

func NewRoleHandler(svc services.ProfileService) *RoleHandler {
	return &RoleHandler{svc: svc}
}

type RoleResponse struct {
	Profile *models.UserProfile `json:"profile"`
	Landing string              `json:"landing"`
}

func (h *RoleHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.EnsureProfile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, RoleResponse{Profile: p, Landing: services.Landing(p)})
}

type SelectRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

func (h *RoleHandler) Select(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SelectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RoleHandler.Select", "invalid request body", err))
		return
	}

	p, err := h.svc.SelectRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, RoleResponse{Profile: p, Landing: services.Landing(p)})
}
