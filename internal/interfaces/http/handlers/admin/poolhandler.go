package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

// PoolHandler seeds the address pool and reports its state.
type PoolHandler struct {
	seeder poolSeeder
	stats  poolStatsReader
	logger logger.Interface
}

func NewPoolHandler(seeder poolSeeder, stats poolStatsReader, logger logger.Interface) *PoolHandler {
	return &PoolHandler{seeder: seeder, stats: stats, logger: logger}
}

type SeedPoolRequest struct {
	Addresses []string `json:"addresses" binding:"required,min=1"`
}

// Seed loads operator-provided addresses.
// @Summary Seed address pool
// @Description Load operator-provided addresses; already known addresses are skipped
// @Tags Admin Pool
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body SeedPoolRequest true "Addresses to add"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /admin/address-pool/seed [post]
func (h *PoolHandler) Seed(c *gin.Context) {
	var req SeedPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.seeder.Execute(c.Request.Context(), req.Addresses)
	if err != nil {
		h.logger.Errorw("failed to seed address pool", "count", len(req.Addresses), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Stats reports pool counts and the active key.
// @Summary Address pool statistics
// @Tags Admin Pool
// @Produce json
// @Security AdminKey
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /admin/address-pool/stats [get]
func (h *PoolHandler) Stats(c *gin.Context) {
	result, err := h.stats.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to read pool stats", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
