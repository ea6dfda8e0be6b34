package services

import (
	"context"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewService interface {
	CreateReview(ctx context.Context, actor Actor, request *CreateReviewRequest) (*models.Review, error)
	GetTripReviews(ctx context.Context, tripID primitive.ObjectID, sort string, rating int, params *utils.PaginationParams) (*TripReviewsResult, error)
	GetUserReviews(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error)
	GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	UpdateReview(ctx context.Context, actor Actor, id primitive.ObjectID, request *UpdateReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, actor Actor, id primitive.ObjectID) error
	VoteHelpful(ctx context.Context, actor Actor, id primitive.ObjectID) (int, error)

	// Admin
	ListReviews(ctx context.Context, status models.ReviewStatus, params *utils.PaginationParams) ([]*models.Review, int64, error)
	ModerateReview(ctx context.Context, actor Actor, id primitive.ObjectID, request *ModerateReviewRequest) (*models.Review, error)
}

type CreateReviewRequest struct {
	Trip         string              `json:"trip" validate:"required,object_id"`
	Rating       models.ReviewRating `json:"rating" validate:"required"`
	Title        string              `json:"title" validate:"required,max=100"`
	Content      string              `json:"content" validate:"required,min=20,max=2000"`
	Pros         []string            `json:"pros" validate:"max=10"`
	Cons         []string            `json:"cons" validate:"max=10"`
	Images       []models.Image      `json:"images" validate:"omitempty,max=5,dive"`
	TravelDate   *time.Time          `json:"travelDate" validate:"omitempty,past_date"`
	TraveledWith models.TraveledWith `json:"traveledWith" validate:"omitempty,oneof=solo couple family friends business group"`
	// WouldRecommend defaults to true when omitted.
	WouldRecommend *bool `json:"wouldRecommend"`
}

// UpdateReviewRequest carries the fields an author may edit. Nil fields are
// left unchanged.
type UpdateReviewRequest struct {
	Rating  *models.ReviewRating `json:"rating"`
	Title   *string              `json:"title" validate:"omitempty,max=100"`
	Content *string              `json:"content" validate:"omitempty,min=20,max=2000"`
	Pros    []string             `json:"pros" validate:"max=10"`
	Cons    []string             `json:"cons" validate:"max=10"`
	Images  []models.Image       `json:"images" validate:"omitempty,max=5,dive"`
}

type ModerateReviewRequest struct {
	Status          models.ReviewStatus `json:"status" validate:"omitempty,oneof=pending approved rejected flagged"`
	ModerationNotes string              `json:"moderationNotes" validate:"max=1000"`
	Response        string              `json:"response" validate:"max=2000"`
}

type TripReviewsResult struct {
	Reviews []*models.Review      `json:"reviews"`
	Total   int64                 `json:"-"`
	Summary *models.RatingSummary `json:"ratingSummary"`
}

type reviewService struct {
	reviewRepo  interfaces.ReviewRepository
	tripRepo    interfaces.TripRepository
	bookingRepo interfaces.BookingRepository
	logger      *logger.Logger
	now         func() time.Time
}

func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	tripRepo interfaces.TripRepository,
	bookingRepo interfaces.BookingRepository,
	logger *logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		tripRepo:    tripRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *reviewService) CreateReview(ctx context.Context, actor Actor, request *CreateReviewRequest) (*models.Review, error) {
	tripID, err := utils.ParseObjectID(request.Trip, "trip ID")
	if err != nil {
		return nil, err
	}

	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}

	existing, err := s.reviewRepo.GetByUserAndTrip(ctx, actor.UserID, tripID)
	if err != nil && !utils.IsKind(err, utils.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewConflictError("You have already reviewed this trip")
	}

	review := &models.Review{
		User:           actor.UserID,
		Trip:           tripID,
		Rating:         request.Rating,
		Title:          request.Title,
		Content:        request.Content,
		Pros:           request.Pros,
		Cons:           request.Cons,
		Images:         request.Images,
		TravelDate:     request.TravelDate,
		TraveledWith:   request.TraveledWith,
		WouldRecommend: true,
		VotedBy:        []primitive.ObjectID{},
		Status:         models.ReviewStatusApproved,
	}
	if request.WouldRecommend != nil {
		review.WouldRecommend = *request.WouldRecommend
	}

	booking, err := s.bookingRepo.FindVerifiedForReview(ctx, actor.UserID, tripID)
	if err != nil {
		return nil, err
	}
	if booking != nil {
		review.Booking = &booking.ID
		review.IsVerifiedPurchase = true
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, tripID); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(actor.UserID, "review_created", map[string]interface{}{
		"review_id": review.ID.Hex(),
		"trip_id":   tripID.Hex(),
		"rating":    review.Rating.Overall,
	})
	return review, nil
}

func (s *reviewService) GetTripReviews(ctx context.Context, tripID primitive.ObjectID, sort string, rating int, params *utils.PaginationParams) (*TripReviewsResult, error) {
	filter := &interfaces.ReviewFilter{
		Trip:   &tripID,
		Status: models.ReviewStatusApproved,
		Rating: rating,
		Sort:   sort,
	}

	reviews, total, err := s.reviewRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	summary, err := s.reviewRepo.ApprovedSummary(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return &TripReviewsResult{Reviews: reviews, Total: total, Summary: summary}, nil
}

func (s *reviewService) GetUserReviews(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	return s.reviewRepo.List(ctx, &interfaces.ReviewFilter{User: &userID, Status: models.ReviewStatusApproved}, params)
}

func (s *reviewService) GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return s.reviewRepo.GetByID(ctx, id)
}

func (s *reviewService) UpdateReview(ctx context.Context, actor Actor, id primitive.ObjectID, request *UpdateReviewRequest) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.User != actor.UserID {
		return nil, utils.NewForbiddenError("Not authorized to update this review")
	}

	fields := bson.M{}
	if request.Rating != nil {
		fields["rating"] = *request.Rating
	}
	if request.Title != nil {
		fields["title"] = *request.Title
	}
	if request.Content != nil {
		fields["content"] = *request.Content
	}
	if request.Pros != nil {
		fields["pros"] = request.Pros
	}
	if request.Cons != nil {
		fields["cons"] = request.Cons
	}
	if request.Images != nil {
		fields["images"] = request.Images
	}

	updated, err := s.reviewRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	if request.Rating != nil && updated.Status == models.ReviewStatusApproved {
		if err := s.recompute(ctx, updated.Trip); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(review.User) {
		return utils.NewForbiddenError("Not authorized to delete this review")
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}

	if review.Status == models.ReviewStatusApproved {
		return s.recompute(ctx, review.Trip)
	}
	return nil
}

func (s *reviewService) VoteHelpful(ctx context.Context, actor Actor, id primitive.ObjectID) (int, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if review.User == actor.UserID {
		return 0, utils.NewBadRequestError("You cannot vote for your own review")
	}
	if review.HasVoted(actor.UserID) {
		return 0, utils.NewBadRequestError("You have already voted for this review")
	}

	added, err := s.reviewRepo.AddHelpfulVote(ctx, id, actor.UserID)
	if err != nil {
		return 0, err
	}
	if !added {
		return 0, utils.NewBadRequestError("You have already voted for this review")
	}
	return review.HelpfulVotes + 1, nil
}

func (s *reviewService) ListReviews(ctx context.Context, status models.ReviewStatus, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	return s.reviewRepo.List(ctx, &interfaces.ReviewFilter{Status: status}, params)
}

func (s *reviewService) ModerateReview(ctx context.Context, actor Actor, id primitive.ObjectID, request *ModerateReviewRequest) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := review.Status
	fields := bson.M{}
	if request.Status != "" {
		fields["status"] = request.Status
	}
	if request.ModerationNotes != "" {
		fields["moderation_notes"] = request.ModerationNotes
	}
	if request.Response != "" {
		fields["response"] = &models.ReviewResponse{
			Content:     request.Response,
			RespondedBy: actor.UserID,
			RespondedAt: s.now(),
		}
	}

	review, err = s.reviewRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	if previous != review.Status && (previous == models.ReviewStatusApproved || review.Status == models.ReviewStatusApproved) {
		if err := s.recompute(ctx, review.Trip); err != nil {
			return nil, err
		}
	}

	s.logger.LogUserAction(actor.UserID, "review_moderated", map[string]interface{}{
		"review_id": review.ID.Hex(),
		"status":    review.Status,
	})
	return review, nil
}

// recompute refreshes the trip's rating from its approved reviews.
func (s *reviewService) recompute(ctx context.Context, tripID primitive.ObjectID) error {
	summary, err := s.reviewRepo.ApprovedSummary(ctx, tripID)
	if err != nil {
		return err
	}

	rating := models.Rating{Average: summary.Average, Count: summary.Count}
	if summary.Count == 0 {
		rating = models.Rating{}
	}

	if err := s.tripRepo.UpdateRating(ctx, tripID, rating); err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil
		}
		return err
	}
	return nil
}
