package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subdto "scholara/internal/application/subscription/dto"
	"scholara/internal/application/subscription/usecases"
	"scholara/internal/shared/id"
	"scholara/internal/shared/logger"
	"scholara/internal/shared/utils"
)

type PlanHandler struct {
	createPlanUC        *usecases.CreatePlanUseCase
	updatePlanModulesUC *usecases.UpdatePlanModulesUseCase
	deactivatePlanUC    *usecases.DeactivatePlanUseCase
	getPlanUC           *usecases.GetPlanUseCase
	listPlansUC         *usecases.ListPlansUseCase
	logger              logger.Interface
}

func NewPlanHandler(
	createPlanUC *usecases.CreatePlanUseCase,
	updatePlanModulesUC *usecases.UpdatePlanModulesUseCase,
	deactivatePlanUC *usecases.DeactivatePlanUseCase,
	getPlanUC *usecases.GetPlanUseCase,
	listPlansUC *usecases.ListPlansUseCase,
) *PlanHandler {
	return &PlanHandler{
		createPlanUC:        createPlanUC,
		updatePlanModulesUC: updatePlanModulesUC,
		deactivatePlanUC:    deactivatePlanUC,
		getPlanUC:           getPlanUC,
		listPlansUC:         listPlansUC,
		logger:              logger.NewLogger(),
	}
}

type CreatePlanRequest struct {
	Name        string   `json:"name" binding:"required"`
	Slug        string   `json:"slug" binding:"required"`
	Description string   `json:"description"`
	Modules     []string `json:"modules" binding:"required,min=1"`
}

type UpdatePlanModulesRequest struct {
	Modules []string `json:"modules" binding:"required,min=1"`
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createPlanUC.Execute(c.Request.Context(), usecases.CreatePlanCommand{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Modules:     req.Modules,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, subdto.ToPlanDTO(result), "Plan created successfully")
}

func (h *PlanHandler) UpdatePlanModules(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixPlan, "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdatePlanModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update plan modules", "error", err, "plan_sid", sid)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.updatePlanModulesUC.Execute(c.Request.Context(), usecases.UpdatePlanModulesCommand{
		PlanSID: sid,
		Modules: req.Modules,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan modules updated successfully", subdto.ToPlanDTO(result))
}

func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixPlan, "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deactivatePlanUC.Execute(c.Request.Context(), usecases.DeactivatePlanCommand{PlanSID: sid}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan deactivated successfully", nil)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixPlan, "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getPlanUC.Execute(c.Request.Context(), usecases.GetPlanQuery{PlanSID: sid})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", subdto.ToPlanDTO(result))
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "false") == "true"

	result, err := h.listPlansUC.Execute(c.Request.Context(), usecases.ListPlansQuery{ActiveOnly: activeOnly})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", subdto.ToPlanDTOList(result))
}
