package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/application/service"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// TenantHandler 租户 HTTP 处理器
type TenantHandler struct {
	tenants   service.TenantAppService
	dashboard service.DashboardAppService
	logger    logger.Logger
}

// NewTenantHandler 创建租户处理器
func NewTenantHandler(tenants service.TenantAppService, dashboard service.DashboardAppService, log logger.Logger) *TenantHandler {
	return &TenantHandler{
		tenants:   tenants,
		dashboard: dashboard,
		logger:    log.WithComponent("tenant_handler"),
	}
}

// CreateTenant 创建租户
// POST /api/v1/tenants
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req dto.CreateTenantRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.tenants.CreateTenant(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err, "create_tenant")
		return
	}
	respond(c, http.StatusCreated, resp)
}

// ListTenants 列出租户
// GET /api/v1/tenants
func (h *TenantHandler) ListTenants(c *gin.Context) {
	var req dto.ListTenantsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleError(c, h.logger, errors.ErrInvalidRequest(err.Error()), "list_tenants")
		return
	}
	resp, err := h.tenants.ListTenants(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err, "list_tenants")
		return
	}
	respond(c, http.StatusOK, resp)
}

// GetTenant 获取租户
// GET /api/v1/tenants/:tenant_id
func (h *TenantHandler) GetTenant(c *gin.Context) {
	resp, err := h.tenants.GetTenant(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		handleError(c, h.logger, err, "get_tenant")
		return
	}
	respond(c, http.StatusOK, resp)
}

// UpdateTenant 更新租户资料
// PUT /api/v1/tenants/:tenant_id
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	var req dto.UpdateTenantRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.tenants.UpdateTenantProfile(c.Request.Context(), c.Param("tenant_id"), &req)
	if err != nil {
		handleError(c, h.logger, err, "update_tenant")
		return
	}
	respond(c, http.StatusOK, resp)
}

// ResetTenant 重置租户
// POST /api/v1/tenants/:tenant_id/reset
func (h *TenantHandler) ResetTenant(c *gin.Context) {
	resp, err := h.tenants.ResetTenant(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		handleError(c, h.logger, err, "reset_tenant")
		return
	}
	respond(c, http.StatusOK, resp)
}

// GetScores 获取评分仪表盘
// GET /api/v1/tenants/:tenant_id/scores
func (h *TenantHandler) GetScores(c *gin.Context) {
	resp, err := h.dashboard.GetScores(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		handleError(c, h.logger, err, "get_scores")
		return
	}
	respond(c, http.StatusOK, resp)
}

// RecomputeScores 手动重算评分
// POST /api/v1/tenants/:tenant_id/scores/recompute
func (h *TenantHandler) RecomputeScores(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	scores, err := h.tenants.RecomputeScores(c.Request.Context(), tenantID)
	if err != nil {
		handleError(c, h.logger, err, "recompute_scores")
		return
	}
	respond(c, http.StatusOK, gin.H{"tenant_id": tenantID, "scores": scores})
}
