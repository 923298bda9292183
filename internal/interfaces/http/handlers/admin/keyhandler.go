package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
	"github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

const defaultPreviewCount = 5

// KeyHandler manages the extended public keys addresses are derived from.
type KeyHandler struct {
	keys   keyManager
	logger logger.Interface
}

func NewKeyHandler(keys keyManager, logger logger.Interface) *KeyHandler {
	return &KeyHandler{keys: keys, logger: logger}
}

type RegisterKeyRequest struct {
	Key      string `json:"key" binding:"required"`
	Network  string `json:"network" binding:"omitempty,oneof=mainnet testnet"`
	Label    string `json:"label" binding:"max=100"`
	Activate bool   `json:"activate"`
}

// Register stores a new extended key.
// @Summary Register extended key
// @Description Store an account-level extended public key (xpub, zpub, tpub or vpub)
// @Tags Admin Keys
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body RegisterKeyRequest true "Key to register"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /admin/extended-keys [post]
func (h *KeyHandler) Register(c *gin.Context) {
	var req RegisterKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}
	network := vo.NetworkMainnet
	if req.Network != "" {
		network = vo.Network(req.Network)
	}

	view, err := h.keys.Register(c.Request.Context(), usecases.RegisterKeyCommand{
		KeyMaterial: req.Key,
		Network:     network,
		Label:       req.Label,
		Activate:    req.Activate,
	})
	if err != nil {
		h.logger.Warnw("failed to register extended key", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, view, "extended key registered")
}

// List returns all keys with masked key material.
// @Summary List extended keys
// @Tags Admin Keys
// @Produce json
// @Security AdminKey
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /admin/extended-keys [get]
func (h *KeyHandler) List(c *gin.Context) {
	views, err := h.keys.List(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list extended keys", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", views)
}

// Activate makes the key the single active derivation source.
// @Summary Activate extended key
// @Tags Admin Keys
// @Produce json
// @Security AdminKey
// @Param id path string true "Key ID"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/extended-keys/{id}/activate [post]
func (h *KeyHandler) Activate(c *gin.Context) {
	view, err := h.keys.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "extended key activated", view)
}

// @Summary Deactivate extended key
// @Tags Admin Keys
// @Produce json
// @Security AdminKey
// @Param id path string true "Key ID"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/extended-keys/{id}/deactivate [post]
func (h *KeyHandler) Deactivate(c *gin.Context) {
	view, err := h.keys.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "extended key deactivated", view)
}

type derivedAddressResponse struct {
	Index   uint32 `json:"index"`
	Path    string `json:"path"`
	Address string `json:"address"`
}

// Preview derives addresses without reserving them.
// @Summary Preview derived addresses
// @Tags Admin Keys
// @Produce json
// @Security AdminKey
// @Param id path string true "Key ID"
// @Param from query int false "First index" default(0)
// @Param count query int false "Number of addresses" default(5)
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/extended-keys/{id}/addresses [get]
func (h *KeyHandler) Preview(c *gin.Context) {
	from, err := strconv.ParseUint(c.DefaultQuery("from", "0"), 10, 32)
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid from"))
		return
	}
	count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(defaultPreviewCount)))
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid count"))
		return
	}

	derived, err := h.keys.Preview(c.Request.Context(), c.Param("id"), uint32(from), count)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	out := make([]derivedAddressResponse, 0, len(derived))
	for _, d := range derived {
		out = append(out, derivedAddressResponse{Index: d.Index, Path: d.Path, Address: d.Address})
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}
