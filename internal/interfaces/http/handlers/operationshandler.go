package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	escrowUsecases "github.com/orris-inc/satsgate/internal/application/escrow/usecases"
	"github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

// OperationsHandler serves pool replenishment, refunds and the health report.
type OperationsHandler struct {
	replenishUC replenishPoolUseCase
	refundUC    processRefundUseCase
	health      healthChecker
	logger      logger.Interface
}

func NewOperationsHandler(
	replenishUC replenishPoolUseCase,
	refundUC processRefundUseCase,
	health healthChecker,
	logger logger.Interface,
) *OperationsHandler {
	return &OperationsHandler{
		replenishUC: replenishUC,
		refundUC:    refundUC,
		health:      health,
		logger:      logger,
	}
}

// ReplenishAddresses runs one replenishment pass on demand.
// @Summary Replenish address pool
// @Description Run one replenishment pass against the active extended key
// @Tags Operations
// @Produce json
// @Security AdminKey
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Router /replenish-addresses [post]
func (h *OperationsHandler) ReplenishAddresses(c *gin.Context) {
	result, err := h.replenishUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("manual replenishment failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

type ProcessRefundRequest struct {
	EscrowID string `json:"escrowId"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

// ProcessRefund refunds a held escrow.
// @Summary Refund held escrow
// @Description Refund a held escrow and mark its order and payment refunded
// @Tags Operations
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body ProcessRefundRequest true "Escrow to refund"
// @Success 200 {object} utils.APIResponse{data=escrowUsecases.RefundResult}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /process-refund [post]
func (h *OperationsHandler) ProcessRefund(c *gin.Context) {
	var req ProcessRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.refundUC.Execute(c.Request.Context(), escrowUsecases.ProcessRefundCommand{
		EscrowID: req.EscrowID,
		Reason:   req.Reason,
		Notes:    req.Notes,
	})
	if err != nil {
		h.logger.Warnw("refund rejected", "escrow_id", req.EscrowID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "refund processed", result)
}

// SystemHealth reports 200, 207 or 503 with the per-check breakdown.
// @Summary System health
// @Description Aggregate dependency checks. 200 when healthy, 207 when degraded, 503 when unhealthy.
// @Tags Operations
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Success 207 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /system-health [get]
func (h *OperationsHandler) SystemHealth(c *gin.Context) {
	report := h.health.Check(c.Request.Context())
	c.JSON(report.Status.HTTPStatus(), utils.APIResponse{
		Success: report.Status.HTTPStatus() != http.StatusServiceUnavailable,
		Data:    report,
	})
}
