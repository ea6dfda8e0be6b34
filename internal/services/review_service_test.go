package services

import (
	"context"
	"strings"
	"testing"

	"gbtravel/internal/models"
	"gbtravel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reviewFixture struct {
	service  ReviewService
	reviews  *fakeReviewRepo
	trips    *fakeTripRepo
	bookings *fakeBookingRepo
	trip     *models.Trip
}

func newReviewFixture() *reviewFixture {
	trip := newTestTrip(10, 30)
	f := &reviewFixture{
		reviews:  newFakeReviewRepo(),
		trips:    newFakeTripRepo(trip),
		bookings: newFakeBookingRepo(),
		trip:     trip,
	}
	f.service = NewReviewService(f.reviews, f.trips, f.bookings, logger.NewNop())
	return f
}

func (f *reviewFixture) review(t *testing.T, author Actor, rating int) *models.Review {
	t.Helper()
	review, err := f.service.CreateReview(context.Background(), author, &CreateReviewRequest{
		Trip:    f.trip.ID.Hex(),
		Rating:  models.ReviewRating{Overall: rating},
		Title:   "Unforgettable valley",
		Content: strings.Repeat("Great guides and views. ", 2),
	})
	require.NoError(t, err)
	return review
}

func customer() Actor {
	return Actor{UserID: primitive.NewObjectID(), Role: models.UserRoleCustomer}
}

func (f *reviewFixture) rating(t *testing.T) models.Rating {
	t.Helper()
	trip, err := f.trips.GetByID(context.Background(), f.trip.ID)
	require.NoError(t, err)
	return trip.Rating
}

func TestReviews_RecomputeTripRating(t *testing.T) {
	f := newReviewFixture()

	f.review(t, customer(), 5)
	f.review(t, customer(), 4)
	lowest := customer()
	third := f.review(t, lowest, 3)

	assert.Equal(t, models.Rating{Average: 4.0, Count: 3}, f.rating(t))

	require.NoError(t, f.service.DeleteReview(context.Background(), lowest, third.ID))
	assert.Equal(t, models.Rating{Average: 4.5, Count: 2}, f.rating(t))
}

func TestReviews_OnePerTrip(t *testing.T) {
	f := newReviewFixture()
	author := customer()
	f.review(t, author, 5)

	_, err := f.service.CreateReview(context.Background(), author, &CreateReviewRequest{
		Trip:    f.trip.ID.Hex(),
		Rating:  models.ReviewRating{Overall: 2},
		Title:   "Second thoughts",
		Content: "Changed my mind about this trip entirely.",
	})
	require.Error(t, err)
	assert.Equal(t, 409, appErrorStatus(t, err))
	assert.Equal(t, 1, f.rating(t).Count)
}

func TestReviews_VerifiedPurchase(t *testing.T) {
	f := newReviewFixture()
	author := customer()
	f.bookings.put(&models.Booking{User: author.UserID, Trip: f.trip.ID, PaymentStatus: models.PaymentStatusCompleted})

	verified := f.review(t, author, 5)
	assert.True(t, verified.IsVerifiedPurchase)
	assert.NotNil(t, verified.Booking)
	assert.True(t, verified.WouldRecommend)

	unverified := f.review(t, customer(), 4)
	assert.False(t, unverified.IsVerifiedPurchase)
}

func TestReviews_UnknownTrip(t *testing.T) {
	f := newReviewFixture()

	_, err := f.service.CreateReview(context.Background(), customer(), &CreateReviewRequest{
		Trip:    primitive.NewObjectID().Hex(),
		Rating:  models.ReviewRating{Overall: 5},
		Title:   "Nowhere",
		Content: "This trip does not exist at all, sadly.",
	})
	require.Error(t, err)
	assert.Equal(t, 404, appErrorStatus(t, err))
}

func TestReviews_UpdateByAuthorOnly(t *testing.T) {
	f := newReviewFixture()
	author := customer()
	review := f.review(t, author, 5)

	two := models.ReviewRating{Overall: 2}
	_, err := f.service.UpdateReview(context.Background(), customer(), review.ID, &UpdateReviewRequest{Rating: &two})
	require.Error(t, err)
	assert.Equal(t, 403, appErrorStatus(t, err))

	updated, err := f.service.UpdateReview(context.Background(), author, review.ID, &UpdateReviewRequest{Rating: &two})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating.Overall)
	assert.Equal(t, models.Rating{Average: 2, Count: 1}, f.rating(t))
}

func TestReviews_DeleteByAdmin(t *testing.T) {
	f := newReviewFixture()
	review := f.review(t, customer(), 5)

	err := f.service.DeleteReview(context.Background(), customer(), review.ID)
	require.Error(t, err)
	assert.Equal(t, 403, appErrorStatus(t, err))

	admin := Actor{UserID: primitive.NewObjectID(), Role: models.UserRoleAdmin}
	require.NoError(t, f.service.DeleteReview(context.Background(), admin, review.ID))
	assert.Equal(t, models.Rating{}, f.rating(t))
}

func TestReviews_VoteHelpful(t *testing.T) {
	f := newReviewFixture()
	author := customer()
	review := f.review(t, author, 5)
	voter := customer()

	_, err := f.service.VoteHelpful(context.Background(), author, review.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "your own review")

	votes, err := f.service.VoteHelpful(context.Background(), voter, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, votes)

	_, err = f.service.VoteHelpful(context.Background(), voter, review.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already voted")
}

func TestReviews_ModerationMovesRating(t *testing.T) {
	f := newReviewFixture()
	admin := Actor{UserID: primitive.NewObjectID(), Role: models.UserRoleAdmin}
	f.review(t, customer(), 5)
	flagged := f.review(t, customer(), 1)
	assert.Equal(t, models.Rating{Average: 3, Count: 2}, f.rating(t))

	moderated, err := f.service.ModerateReview(context.Background(), admin, flagged.ID, &ModerateReviewRequest{
		Status:   models.ReviewStatusRejected,
		Response: "We have looked into this.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, moderated.Status)
	require.NotNil(t, moderated.Response)
	assert.Equal(t, admin.UserID, moderated.Response.RespondedBy)
	assert.Equal(t, models.Rating{Average: 5, Count: 1}, f.rating(t))

	_, err = f.service.ModerateReview(context.Background(), admin, flagged.ID, &ModerateReviewRequest{Status: models.ReviewStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.Rating{Average: 3, Count: 2}, f.rating(t))
}

func TestReviews_EditKeepsConcurrentVotes(t *testing.T) {
	f := newReviewFixture()
	author := customer()
	review := f.review(t, author, 4)
	voter := customer()

	f.reviews.beforeUpdate = func() {
		added, err := f.reviews.AddHelpfulVote(context.Background(), review.ID, voter.UserID)
		require.NoError(t, err)
		require.True(t, added)
	}

	title := "Even better the second time"
	updated, err := f.service.UpdateReview(context.Background(), author, review.ID, &UpdateReviewRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 1, updated.HelpfulVotes)
	assert.True(t, updated.HasVoted(voter.UserID))

	admin := Actor{UserID: primitive.NewObjectID(), Role: models.UserRoleAdmin}
	f.reviews.beforeUpdate = nil
	moderated, err := f.service.ModerateReview(context.Background(), admin, review.ID, &ModerateReviewRequest{ModerationNotes: "Checked"})
	require.NoError(t, err)
	assert.Equal(t, "Checked", moderated.ModerationNotes)
	assert.Equal(t, 1, moderated.HelpfulVotes)
	assert.Equal(t, title, moderated.Title)
}
