package handlers

import (
	"gbtravel/internal/models"
	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/internal/validators"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	var request services.CreateReviewRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), caller, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Review submitted successfully", gin.H{"review": review})
}

// GetTripReviews lists approved reviews with the rating distribution
func (h *ReviewHandler) GetTripReviews(c *gin.Context) {
	tripID, err := utils.ParamObjectID(c, "tripId", "trip ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	params := utils.GetPaginationParams(c, 10)
	rating := 0
	if v := queryInt(c, "rating"); v != nil {
		rating = *v
	}

	result, err := h.reviewService.GetTripReviews(c.Request.Context(), tripID, c.Query("sort"), rating, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Reviews retrieved successfully", result, utils.CreatePaginationMeta(params, result.Total))
}

func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	userID, err := utils.ParamObjectID(c, "userId", "user ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	params := utils.GetPaginationParams(c, 10)
	reviews, total, err := h.reviewService.GetUserReviews(c.Request.Context(), userID, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Reviews retrieved successfully", reviews, utils.CreatePaginationMeta(params, total))
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "review ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review retrieved successfully", gin.H{"review": review})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "review ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var request services.UpdateReviewRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), caller, id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review updated successfully", gin.H{"review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "review ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), caller, id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review deleted successfully", nil)
}

func (h *ReviewHandler) VoteHelpful(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "review ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	votes, err := h.reviewService.VoteHelpful(c.Request.Context(), caller, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vote recorded successfully", gin.H{"helpfulVotes": votes})
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	params := utils.GetPaginationParams(c, 20)
	reviews, total, err := h.reviewService.ListReviews(c.Request.Context(), models.ReviewStatus(c.Query("status")), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Reviews retrieved successfully", reviews, utils.CreatePaginationMeta(params, total))
}

func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := utils.ParamObjectID(c, "id", "review ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var request services.ModerateReviewRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	review, err := h.reviewService.ModerateReview(c.Request.Context(), caller, id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review moderated successfully", gin.H{"review": review})
}
