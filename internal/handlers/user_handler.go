package handlers

import (
	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/internal/validators"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), caller.UserID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", gin.H{"user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	var request services.UpdateProfileRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), caller.UserID, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated successfully", gin.H{"user": user})
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), caller.UserID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Account deleted successfully", nil)
}

func (h *UserHandler) GetBookings(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, 10)
	bookings, total, err := h.userService.GetBookings(c.Request.Context(), caller.UserID, models.BookingStatus(c.Query("status")), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Bookings retrieved successfully", bookings, utils.CreatePaginationMeta(params, total))
}

func (h *UserHandler) AddFavorite(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	destinationID, err := utils.ParamObjectID(c, "destinationId", "destination ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	favorites, err := h.userService.AddFavorite(c.Request.Context(), caller.UserID, destinationID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Added to favorites", gin.H{"favorites": favorites})
}

func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	destinationID, err := utils.ParamObjectID(c, "destinationId", "destination ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	favorites, err := h.userService.RemoveFavorite(c.Request.Context(), caller.UserID, destinationID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Removed from favorites", gin.H{"favorites": favorites})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c, 20)
	filter := &interfaces.UserFilter{
		Role:   models.UserRole(c.Query("role")),
		Search: c.Query("search"),
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), filter, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Users retrieved successfully", users, utils.CreatePaginationMeta(params, total))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "user ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved successfully", gin.H{"user": user})
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "user ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var request services.UpdateRoleRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), caller, id, request.Role)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User role updated successfully", gin.H{"user": user})
}

func (h *UserHandler) UpdateStatus(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "user ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var request services.UpdateUserStatusRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	user, err := h.userService.UpdateStatus(c.Request.Context(), caller, id, *request.IsActive)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User status updated successfully", gin.H{"user": user})
}
