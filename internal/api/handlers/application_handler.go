package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/talentpool/internal/export"
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/services"
	"github.com/yoockh/talentpool/internal/utils"
)

type ApplicationHandler struct {
	svc services.ApplicationService
}

func NewApplicationHandler(svc services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	app, err := h.svc.Apply(c.Request.Context(), actor, c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	app, err := h.svc.Get(c.Request.Context(), actor, c.Param("application_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

type UpdateStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.UpdateStatus", "invalid request body", err))
		return
	}

	app, err := h.svc.UpdateStatus(c.Request.Context(), actor, c.Param("application_id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) ListForRecruiter(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	apps, err := h.svc.ListForRecruiter(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) History(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	events, err := h.svc.History(c.Request.Context(), actor, c.Param("application_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *ApplicationHandler) Review(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	out, err := h.svc.Review(c.Request.Context(), actor, c.Param("application_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ApplicationHandler) Ranked(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	ranked, err := h.svc.RankForJob(c.Request.Context(), actor, c.Param("job_id"), queryInt(c, "limit", 0))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ranked)
}

func (h *ApplicationHandler) Export(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	jobID := c.Param("job_id")
	data, err := h.svc.ExportForJob(c.Request.Context(), actor, jobID)
	if err != nil {
		writeError(c, err)
		return
	}

	name := "applications-" + jobID + "-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}
