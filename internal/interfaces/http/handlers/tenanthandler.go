package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scholara/internal/application/tenant/dto"
	"scholara/internal/application/tenant/usecases"
	"scholara/internal/shared/id"
	"scholara/internal/shared/logger"
	"scholara/internal/shared/utils"
)

type TenantHandler struct {
	registerTenantUC *usecases.RegisterTenantUseCase
	getTenantUC      *usecases.GetTenantUseCase
	logger           logger.Interface
}

func NewTenantHandler(
	registerTenantUC *usecases.RegisterTenantUseCase,
	getTenantUC *usecases.GetTenantUseCase,
) *TenantHandler {
	return &TenantHandler{
		registerTenantUC: registerTenantUC,
		getTenantUC:      getTenantUC,
		logger:           logger.NewLogger(),
	}
}

type RegisterTenantRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func (h *TenantHandler) RegisterTenant(c *gin.Context) {
	var req RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for register tenant", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.registerTenantUC.Execute(c.Request.Context(), usecases.RegisterTenantCommand{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, dto.ToTenantDTO(result), "Tenant registered successfully")
}

func (h *TenantHandler) GetTenant(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixTenant, "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getTenantUC.Execute(c.Request.Context(), usecases.GetTenantQuery{TenantSID: sid})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToTenantDTO(result))
}
