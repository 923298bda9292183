package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentUsecases "github.com/orris-inc/satsgate/internal/application/payment/usecases"
	"github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

// NotificationSignatureHeader carries the hex HMAC-SHA256 of the raw
// notification body.
const NotificationSignatureHeader = "X-Notification-Signature"

// maxNotificationBody caps inbound indexer payloads.
const maxNotificationBody = 64 << 10

type PaymentHandler struct {
	assignAddressUC assignAddressUseCase
	createPaymentUC createPaymentUseCase
	ingestUC        ingestNotificationUseCase
	logger          logger.Interface
}

func NewPaymentHandler(
	assignAddressUC assignAddressUseCase,
	createPaymentUC createPaymentUseCase,
	ingestUC ingestNotificationUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		assignAddressUC: assignAddressUC,
		createPaymentUC: createPaymentUC,
		ingestUC:        ingestUC,
		logger:          logger,
	}
}

type AssignAddressRequest struct {
	OrderID string `json:"orderId"`
}

// AssignAddress hands a receiving address to an order.
// @Summary Assign receiving address
// @Description Reserve a Bitcoin address for an order. Repeated calls for the same order return its live reservation.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body AssignAddressRequest true "Order to assign an address to"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /assign-address [post]
func (h *PaymentHandler) AssignAddress(c *gin.Context) {
	var req AssignAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.assignAddressUC.Execute(c.Request.Context(), req.OrderID)
	if err != nil {
		h.logger.Warnw("address assignment failed", "order_id", req.OrderID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

type CreatePaymentRequest struct {
	OrderID       string                 `json:"orderId" binding:"required"`
	WalletID      string                 `json:"walletId" binding:"required"`
	AmountBTC     string                 `json:"amountBtc"`
	AmountFiat    string                 `json:"amountFiat"`
	FiatCurrency  string                 `json:"fiatCurrency"`
	CustomerEmail string                 `json:"customerEmail" binding:"omitempty,email"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// CreatePayment opens a payment for an order.
// @Summary Create payment
// @Description Open a pending payment for an order, converting a fiat amount at the current BTC price when no BTC amount is given
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body CreatePaymentRequest true "Payment details"
// @Success 201 {object} utils.APIResponse{data=paymentUsecases.CreatePaymentResult}
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /create-payment [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.createPaymentUC.Execute(c.Request.Context(), paymentUsecases.CreatePaymentCommand{
		OrderID:       req.OrderID,
		WalletID:      req.WalletID,
		AmountBTC:     req.AmountBTC,
		AmountFiat:    req.AmountFiat,
		FiatCurrency:  req.FiatCurrency,
		CustomerEmail: req.CustomerEmail,
		Metadata:      req.Metadata,
	})
	if err != nil {
		h.logger.Warnw("failed to create payment", "order_id", req.OrderID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "payment created")
}

// BlockchainWebhook receives address activity from the indexing service. The
// body is read raw because the signature covers the exact bytes sent.
// @Summary Receive blockchain notification
// @Description Record address activity pushed by the indexing service. Answers 200 once the event is stored.
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Notification-Signature header string false "Hex HMAC-SHA256 of the raw body"
// @Param request body paymentUsecases.NotificationPayload true "Indexer notification"
// @Success 200 {object} utils.APIResponse{data=paymentUsecases.IngestResult}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 413 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Router /blockchain-webhook [post]
func (h *PaymentHandler) BlockchainWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBody+1))
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("failed to read body"))
		return
	}
	if len(body) > maxNotificationBody {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, errors.CodeValidation, "notification body too large")
		return
	}

	result, err := h.ingestUC.Execute(c.Request.Context(), body, c.GetHeader(NotificationSignatureHeader))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
