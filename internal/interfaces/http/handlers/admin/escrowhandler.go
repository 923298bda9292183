package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

// EscrowHandler settles held escrows in the merchant's favour.
type EscrowHandler struct {
	releaser escrowReleaser
	logger   logger.Interface
}

func NewEscrowHandler(releaser escrowReleaser, logger logger.Interface) *EscrowHandler {
	return &EscrowHandler{releaser: releaser, logger: logger}
}

// Release pays a held escrow out and marks its order fulfilled.
// @Summary Release held escrow
// @Tags Admin Escrows
// @Produce json
// @Security AdminKey
// @Param id path string true "Escrow ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/escrows/{id}/release [post]
func (h *EscrowHandler) Release(c *gin.Context) {
	escrowID := c.Param("id")
	result, err := h.releaser.Execute(c.Request.Context(), escrowID)
	if err != nil {
		h.logger.Warnw("escrow release rejected", "escrow_id", escrowID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "escrow released", result)
}
