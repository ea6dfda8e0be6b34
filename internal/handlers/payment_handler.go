package handlers

import (
	"io"
	"net/http"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/internal/validators"

	"github.com/gin-gonic/gin"
)

const maxWebhookPayload = 65536

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type createCheckoutRequest struct {
	BookingID string `json:"bookingId" validate:"required,object_id"`
}

func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	var request createCheckoutRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}
	bookingID, err := utils.ParseObjectID(request.BookingID, "booking ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	session, err := h.paymentService.CreateCheckout(c.Request.Context(), caller, bookingID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Checkout session created", session)
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	response, err := h.paymentService.VerifySession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if response.AlreadyVerified {
		utils.SuccessResponse(c, "Payment already verified", response)
		return
	}
	utils.SuccessResponse(c, "Payment verified successfully", response)
}

// HandleWebhook needs the unparsed body for signature verification. Provider
// errors are answered as plain text so the provider's dashboard shows them.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayload))
	if err != nil {
		c.String(http.StatusServiceUnavailable, "Webhook Error: %s", err.Error())
		return
	}

	result, err := h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if appErr, ok := utils.AsAppError(err); ok && appErr.Kind == utils.KindBadRequest {
			c.String(http.StatusBadRequest, appErr.Message)
			return
		}
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) GetHistory(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, 10)
	payments, total, err := h.paymentService.GetHistory(c.Request.Context(), caller.UserID, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Payment history retrieved", payments, utils.CreatePaginationMeta(params, total))
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "payment ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), caller, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment retrieved", gin.H{"payment": payment})
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	params := utils.GetPaginationParams(c, 20)
	filter := &interfaces.PaymentFilter{
		Status: models.PaymentRecordStatus(c.Query("status")),
		Type:   models.PaymentType(c.Query("type")),
	}

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), filter, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Payments retrieved successfully", payments, utils.CreatePaginationMeta(params, total))
}

func (h *PaymentHandler) GetStats(c *gin.Context) {
	stats, err := h.paymentService.GetStats(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment statistics retrieved", stats)
}
