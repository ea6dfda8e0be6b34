package handlers

import (
	"fmt"
	"net/http"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/internal/validators"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

type cancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CreateBooking reserves spots and optionally opens a checkout session
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	var request services.CreateBookingRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	response, err := h.bookingService.CreateBooking(c.Request.Context(), caller, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking created successfully", response)
}

func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, 10)
	status := models.BookingStatus(c.Query("status"))
	bookings, total, err := h.bookingService.GetMyBookings(c.Request.Context(), caller.UserID, status, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Bookings retrieved successfully", bookings, utils.CreatePaginationMeta(params, total))
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "booking ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), caller, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved successfully", gin.H{"booking": booking})
}

// GetByConfirmationCode shows the full booking to its owner or an admin and
// a limited view to everyone else
func (h *BookingHandler) GetByConfirmationCode(c *gin.Context) {
	booking, summary, err := h.bookingService.GetByConfirmationCode(c.Request.Context(), optionalActor(c), c.Param("code"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if booking != nil {
		utils.SuccessResponse(c, "Booking retrieved successfully", gin.H{"booking": booking})
		return
	}
	utils.SuccessResponse(c, "Booking retrieved successfully", gin.H{"booking": summary})
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "booking ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var request cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := validators.BindJSON(c, &request); err != nil {
			utils.HandleError(c, err)
			return
		}
	}

	response, err := h.bookingService.CancelBooking(c.Request.Context(), caller, id, request.Reason)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking cancelled successfully", response)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	params := utils.GetPaginationParams(c, 20)
	filter := &interfaces.BookingFilter{
		BookingStatus: models.BookingStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
		RefundStatus:  models.RefundStatus(c.Query("refundStatus")),
	}

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), filter, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Bookings retrieved successfully", bookings, utils.CreatePaginationMeta(params, total))
}

func (h *BookingHandler) GetStats(c *gin.Context) {
	stats, err := h.bookingService.GetStats(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking statistics retrieved", stats)
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "booking ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var request services.UpdateBookingStatusRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking status updated successfully", gin.H{"booking": booking})
}

// GetTicket streams the booking's QR e-ticket as a JPEG attachment
func (h *BookingHandler) GetTicket(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "booking ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	ticket, err := h.bookingService.GetTicket(c.Request.Context(), caller, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="eticket-%s.jpeg"`, ticket.ConfirmationCode))
	c.Data(http.StatusOK, "image/jpeg", ticket.Image)
}
