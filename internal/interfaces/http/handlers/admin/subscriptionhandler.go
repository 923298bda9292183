package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	webhookUsecases "github.com/orris-inc/satsgate/internal/application/webhook/usecases"
	"github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

// SubscriptionHandler manages outbound webhook subscribers.
type SubscriptionHandler struct {
	subs   subscriptionManager
	logger logger.Interface
}

func NewSubscriptionHandler(subs subscriptionManager, logger logger.Interface) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, logger: logger}
}

type CreateSubscriptionRequest struct {
	URL        string   `json:"url" binding:"required,url"`
	EventTypes []string `json:"eventTypes" binding:"required,min=1"`
	Secret     string   `json:"secret" binding:"omitempty,min=16"`
	MaxRetries int      `json:"maxRetries" binding:"omitempty,min=1,max=20"`
}

// Create registers a subscriber. The signing secret is only returned here.
// @Summary Create webhook subscription
// @Tags Admin Webhooks
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body CreateSubscriptionRequest true "Subscriber"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /admin/webhook-subscriptions [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	sub, err := h.subs.Create(c.Request.Context(), webhookUsecases.CreateSubscriptionCommand{
		URL:        req.URL,
		EventTypes: req.EventTypes,
		Secret:     req.Secret,
		MaxRetries: req.MaxRetries,
	})
	if err != nil {
		h.logger.Warnw("failed to create webhook subscription", "url", req.URL, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, sub, "webhook subscription created")
}

// List returns every subscriber with its failure counter.
// @Summary List webhook subscriptions
// @Tags Admin Webhooks
// @Produce json
// @Security AdminKey
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /admin/webhook-subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	subs, err := h.subs.List(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list webhook subscriptions", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", subs)
}

// Delete deactivates the subscriber; delivery history is kept.
// @Summary Deactivate webhook subscription
// @Tags Admin Webhooks
// @Produce json
// @Security AdminKey
// @Param id path string true "Subscription ID"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/webhook-subscriptions/{id} [delete]
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	if err := h.subs.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "webhook subscription deactivated", nil)
}
