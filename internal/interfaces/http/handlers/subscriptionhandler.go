package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	subdto "scholara/internal/application/subscription/dto"
	"scholara/internal/application/subscription/usecases"
	"scholara/internal/shared/id"
	"scholara/internal/shared/logger"
	"scholara/internal/shared/utils"
)

type SubscriptionHandler struct {
	createSubscriptionUC      *usecases.CreateSubscriptionUseCase
	cancelSubscriptionUC      *usecases.CancelSubscriptionUseCase
	changePlanUC              *usecases.ChangePlanUseCase
	grantModuleUC             *usecases.GrantModuleUseCase
	revokeModuleUC            *usecases.RevokeModuleUseCase
	getSubscriptionUC         *usecases.GetSubscriptionUseCase
	listTenantSubscriptionsUC *usecases.ListTenantSubscriptionsUseCase
	logger                    logger.Interface
}

func NewSubscriptionHandler(
	createSubscriptionUC *usecases.CreateSubscriptionUseCase,
	cancelSubscriptionUC *usecases.CancelSubscriptionUseCase,
	changePlanUC *usecases.ChangePlanUseCase,
	grantModuleUC *usecases.GrantModuleUseCase,
	revokeModuleUC *usecases.RevokeModuleUseCase,
	getSubscriptionUC *usecases.GetSubscriptionUseCase,
	listTenantSubscriptionsUC *usecases.ListTenantSubscriptionsUseCase,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		createSubscriptionUC:      createSubscriptionUC,
		cancelSubscriptionUC:      cancelSubscriptionUC,
		changePlanUC:              changePlanUC,
		grantModuleUC:             grantModuleUC,
		revokeModuleUC:            revokeModuleUC,
		getSubscriptionUC:         getSubscriptionUC,
		listTenantSubscriptionsUC: listTenantSubscriptionsUC,
		logger:                    logger.NewLogger(),
	}
}

type CreateSubscriptionRequest struct {
	TenantSID string     `json:"tenant_sid" binding:"required"`
	Type      string     `json:"type" binding:"required,oneof=predefined custom"`
	PlanSID   string     `json:"plan_sid"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Price     uint64     `json:"price"`
	Currency  string     `json:"currency"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason"`
}

type ChangePlanRequest struct {
	PlanSID string `json:"plan_sid" binding:"required"`
}

type GrantModuleRequest struct {
	Module    string `json:"module" binding:"required"`
	GrantedBy *uint  `json:"granted_by"`
}

func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create subscription", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CreateSubscriptionCommand{
		TenantSID: req.TenantSID,
		Type:      req.Type,
		PlanSID:   req.PlanSID,
		EndDate:   req.EndDate,
		Price:     req.Price,
		Currency:  req.Currency,
	}
	if req.StartDate != nil {
		cmd.StartDate = *req.StartDate
	}

	result, err := h.createSubscriptionUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, subdto.ToSubscriptionDTO(result), "Subscription created successfully")
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixSubscription, "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CancelSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warnw("invalid request body for cancel subscription", "error", err, "subscription_sid", sid)
			utils.ErrorResponseWithError(c, err)
			return
		}
	}

	err = h.cancelSubscriptionUC.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		SubscriptionSID: sid,
		Reason:          req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription cancelled successfully", nil)
}

func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixSubscription, "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for change plan", "error", err, "subscription_sid", sid)
		utils.ErrorResponseWithError(c, err)
		return
	}

	err = h.changePlanUC.Execute(c.Request.Context(), usecases.ChangePlanCommand{
		SubscriptionSID: sid,
		NewPlanSID:      req.PlanSID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription plan changed successfully", nil)
}

func (h *SubscriptionHandler) GrantModule(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixSubscription, "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req GrantModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for grant module", "error", err, "subscription_sid", sid)
		utils.ErrorResponseWithError(c, err)
		return
	}

	err = h.grantModuleUC.Execute(c.Request.Context(), usecases.GrantModuleCommand{
		SubscriptionSID: sid,
		Module:          req.Module,
		GrantedBy:       req.GrantedBy,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Module granted successfully", nil)
}

func (h *SubscriptionHandler) RevokeModule(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixSubscription, "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	err = h.revokeModuleUC.Execute(c.Request.Context(), usecases.RevokeModuleCommand{
		SubscriptionSID: sid,
		Module:          c.Param("module"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Module revoked successfully", nil)
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixSubscription, "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getSubscriptionUC.Execute(c.Request.Context(), usecases.GetSubscriptionQuery{SubscriptionSID: sid})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	details := subdto.SubscriptionDetailsDTO{
		Subscription: subdto.ToSubscriptionDTO(result.Subscription),
		Plan:         subdto.ToPlanDTO(result.Plan),
		Modules:      subdto.ModuleIDStrings(result.Modules),
	}

	utils.SuccessResponse(c, http.StatusOK, "", details)
}

func (h *SubscriptionHandler) ListTenantSubscriptions(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixTenant, "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listTenantSubscriptionsUC.Execute(c.Request.Context(), usecases.ListTenantSubscriptionsQuery{TenantSID: sid})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", subdto.ToSubscriptionDTOList(result))
}
