package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/talentpool/internal/services"
	"github.com/yoockh/talentpool/internal/utils"
)

type CandidateHandler struct {
	svc services.CandidateService
}

func NewCandidateHandler(svc services.CandidateService) *CandidateHandler {
	return &CandidateHandler{svc: svc}
}

func (h *CandidateHandler) Me(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	d, err := h.svc.Me(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *CandidateHandler) UpdateLinks(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.CandidateLinks
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CandidateHandler.UpdateLinks", "invalid request body", err))
		return
	}

	cand, err := h.svc.UpdateLinks(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

func (h *CandidateHandler) UploadResume(c *gin.Context) {
	const op = "CandidateHandler.UploadResume"

	actor, ok := requireActor(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff the first 512 bytes so a renamed file cannot pass as a pdf
	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	head = head[:n]
	if strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") && http.DetectContentType(head) != "application/pdf" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid content type (must be pdf)", nil))
		return
	}

	row, err := h.svc.UploadResume(c.Request.Context(), actor, services.ResumeUpload{
		FileName: fh.Filename,
		Size:     fh.Size,
		Body:     io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *CandidateHandler) Detail(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	d, err := h.svc.Detail(c.Request.Context(), actor, c.Param("candidate_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
