package handlers

import (
	"gbtravel/internal/models"
	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/internal/validators"

	"github.com/gin-gonic/gin"
)

type InquiryHandler struct {
	inquiryService services.InquiryService
}

func NewInquiryHandler(inquiryService services.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

// Submit is the public contact form
func (h *InquiryHandler) Submit(c *gin.Context) {
	var request services.CreateInquiryRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	receipt, err := h.inquiryService.Submit(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Your inquiry has been submitted successfully. We will get back to you within 24 hours.", receipt)
}

func (h *InquiryHandler) ListInquiries(c *gin.Context) {
	params := utils.GetPaginationParams(c, 20)
	inquiries, total, err := h.inquiryService.ListInquiries(c.Request.Context(), models.InquiryStatus(c.Query("status")), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Inquiries retrieved successfully", inquiries, utils.CreatePaginationMeta(params, total))
}

func (h *InquiryHandler) GetInquiry(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "inquiry ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	inquiry, err := h.inquiryService.GetInquiry(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Inquiry retrieved successfully", inquiry)
}

func (h *InquiryHandler) UpdateInquiry(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "inquiry ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var request services.UpdateInquiryRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	inquiry, err := h.inquiryService.UpdateInquiry(c.Request.Context(), caller, id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Inquiry updated successfully", inquiry)
}

func (h *InquiryHandler) DeleteInquiry(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "inquiry ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.inquiryService.DeleteInquiry(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Inquiry deleted successfully", nil)
}
