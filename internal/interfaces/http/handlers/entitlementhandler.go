package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scholara/internal/application/entitlement"
	subdto "scholara/internal/application/subscription/dto"
	tenantusecases "scholara/internal/application/tenant/usecases"
	"scholara/internal/domain/catalog"
	"scholara/internal/shared/id"
	"scholara/internal/shared/logger"
	"scholara/internal/shared/utils"
)

// EntitlementHandler exposes capability queries and the projection admin
// endpoints. Capability reads answer from the entitlement facade and never
// surface resolution failures to the caller.
type EntitlementHandler struct {
	entitlements *entitlement.Service
	refresher    entitlement.ProjectionRefresher
	getTenantUC  *tenantusecases.GetTenantUseCase
	logger       logger.Interface
}

func NewEntitlementHandler(
	entitlements *entitlement.Service,
	refresher entitlement.ProjectionRefresher,
	getTenantUC *tenantusecases.GetTenantUseCase,
) *EntitlementHandler {
	return &EntitlementHandler{
		entitlements: entitlements,
		refresher:    refresher,
		getTenantUC:  getTenantUC,
		logger:       logger.NewLogger(),
	}
}

type RefreshProjectionRequest struct {
	TenantSID string `json:"tenant_sid"`
}

type ModuleCheckResponse struct {
	Module  string `json:"module"`
	Granted bool   `json:"granted"`
}

type PermissionCheckResponse struct {
	Permission string `json:"permission"`
	Granted    bool   `json:"granted"`
}

func (h *EntitlementHandler) GetTenantModules(c *gin.Context) {
	tenantID, ok := h.resolveTenantID(c)
	if !ok {
		return
	}

	modules := h.entitlements.ResolveModules(c.Request.Context(), tenantID)
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"modules": subdto.ModuleIDStrings(modules)})
}

func (h *EntitlementHandler) GetTenantPermissions(c *gin.Context) {
	tenantID, ok := h.resolveTenantID(c)
	if !ok {
		return
	}

	perms := h.entitlements.ResolvePermissions(c.Request.Context(), tenantID)
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"permissions": perms})
}

// CheckTenantModule answers whether the tenant currently holds the named
// module package. Unknown module names report not granted rather than an
// error.
func (h *EntitlementHandler) CheckTenantModule(c *gin.Context) {
	tenantID, ok := h.resolveTenantID(c)
	if !ok {
		return
	}

	raw := c.Param("module")
	resp := ModuleCheckResponse{Module: raw}

	if moduleID, err := catalog.ParseModuleID(raw); err == nil {
		resp.Module = moduleID.String()
		resp.Granted = h.entitlements.HasModule(c.Request.Context(), tenantID, moduleID)
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *EntitlementHandler) CheckTenantPermission(c *gin.Context) {
	tenantID, ok := h.resolveTenantID(c)
	if !ok {
		return
	}

	perm := c.Param("permission")
	resp := PermissionCheckResponse{
		Permission: perm,
		Granted:    h.entitlements.HasPermission(c.Request.Context(), tenantID, perm),
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// RefreshProjection rebuilds the materialized module rows, for one tenant
// when tenant_sid is given or for every tenant otherwise.
func (h *EntitlementHandler) RefreshProjection(c *gin.Context) {
	scope, ok := h.resolveScope(c)
	if !ok {
		return
	}

	if err := h.refresher.Refresh(c.Request.Context(), scope); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Entitlement projection refreshed", nil)
}

// InvalidateCache drops cached entitlements without touching the projection.
func (h *EntitlementHandler) InvalidateCache(c *gin.Context) {
	scope, ok := h.resolveScope(c)
	if !ok {
		return
	}

	if scope != nil {
		h.entitlements.Invalidate(c.Request.Context(), *scope)
	} else {
		h.entitlements.InvalidateAll(c.Request.Context())
	}

	utils.SuccessResponse(c, http.StatusOK, "Entitlement cache invalidated", nil)
}

func (h *EntitlementHandler) resolveTenantID(c *gin.Context) (uint, bool) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixTenant, "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return 0, false
	}

	t, err := h.getTenantUC.Execute(c.Request.Context(), tenantusecases.GetTenantQuery{TenantSID: sid})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return 0, false
	}

	return t.ID(), true
}

// resolveScope reads an optional tenant_sid from the request body and maps
// it to a projection scope. A nil scope means every tenant.
func (h *EntitlementHandler) resolveScope(c *gin.Context) (*uint, bool) {
	var req RefreshProjectionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warnw("invalid request body for projection scope", "error", err)
			utils.ErrorResponseWithError(c, err)
			return nil, false
		}
	}

	if req.TenantSID == "" {
		return nil, true
	}

	t, err := h.getTenantUC.Execute(c.Request.Context(), tenantusecases.GetTenantQuery{TenantSID: req.TenantSID})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return nil, false
	}

	tenantID := t.ID()
	return &tenantID, true
}
