package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/application/service"
	"github.com/turtacn/esg/pkg/logger"
)

// AttachmentHandler 附件 HTTP 处理器
type AttachmentHandler struct {
	attachments service.AttachmentAppService
	logger      logger.Logger
}

// NewAttachmentHandler 创建附件处理器
func NewAttachmentHandler(attachments service.AttachmentAppService, log logger.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, logger: log.WithComponent("attachment_handler")}
}

// AddAttachment POST /api/v1/tenants/:tenant_id/tasks/:task_id/attachments
func (h *AttachmentHandler) AddAttachment(c *gin.Context) {
	var req dto.CreateAttachmentRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.attachments.AddAttachment(c.Request.Context(), c.Param("tenant_id"), c.Param("task_id"), &req)
	if err != nil {
		handleError(c, h.logger, err, "add_attachment")
		return
	}
	respond(c, http.StatusCreated, resp)
}

// ListAttachments GET /api/v1/tenants/:tenant_id/tasks/:task_id/attachments
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	resp, err := h.attachments.ListAttachments(c.Request.Context(), c.Param("tenant_id"), c.Param("task_id"))
	if err != nil {
		handleError(c, h.logger, err, "list_attachments")
		return
	}
	respond(c, http.StatusOK, gin.H{"attachments": resp})
}

// DeleteAttachment DELETE /api/v1/tenants/:tenant_id/tasks/:task_id/attachments/:attachment_id
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	resp, err := h.attachments.DeleteAttachment(c.Request.Context(), c.Param("tenant_id"), c.Param("task_id"), c.Param("attachment_id"))
	if err != nil {
		handleError(c, h.logger, err, "delete_attachment")
		return
	}
	respond(c, http.StatusOK, resp)
}
