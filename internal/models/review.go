package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStatus string
type TraveledWith string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
	ReviewStatusFlagged  ReviewStatus = "flagged"

	TraveledSolo     TraveledWith = "solo"
	TraveledCouple   TraveledWith = "couple"
	TraveledFamily   TraveledWith = "family"
	TraveledFriends  TraveledWith = "friends"
	TraveledBusiness TraveledWith = "business"
	TraveledGroup    TraveledWith = "group"
)

type RatingCategories struct {
	ValueForMoney  int `json:"valueForMoney,omitempty" bson:"value_for_money,omitempty" validate:"omitempty,min=1,max=5"`
	Accommodation  int `json:"accommodation,omitempty" bson:"accommodation,omitempty" validate:"omitempty,min=1,max=5"`
	Activities     int `json:"activities,omitempty" bson:"activities,omitempty" validate:"omitempty,min=1,max=5"`
	Guide          int `json:"guide,omitempty" bson:"guide,omitempty" validate:"omitempty,min=1,max=5"`
	Transportation int `json:"transportation,omitempty" bson:"transportation,omitempty" validate:"omitempty,min=1,max=5"`
	Food           int `json:"food,omitempty" bson:"food,omitempty" validate:"omitempty,min=1,max=5"`
}

type ReviewRating struct {
	Overall    int               `json:"overall" bson:"overall" validate:"required,min=1,max=5"`
	Categories *RatingCategories `json:"categories,omitempty" bson:"categories,omitempty"`
}

type ReviewResponse struct {
	Content     string             `json:"content" bson:"content"`
	RespondedBy primitive.ObjectID `json:"respondedBy" bson:"responded_by"`
	RespondedAt time.Time          `json:"respondedAt" bson:"responded_at"`
}

type Review struct {
	ID                 primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	User               primitive.ObjectID   `json:"user" bson:"user"`
	Trip               primitive.ObjectID   `json:"trip" bson:"trip"`
	Booking            *primitive.ObjectID  `json:"booking,omitempty" bson:"booking,omitempty"`
	Rating             ReviewRating         `json:"rating" bson:"rating"`
	Title              string               `json:"title" bson:"title"`
	Content            string               `json:"content" bson:"content"`
	Pros               []string             `json:"pros,omitempty" bson:"pros,omitempty"`
	Cons               []string             `json:"cons,omitempty" bson:"cons,omitempty"`
	Images             []Image              `json:"images,omitempty" bson:"images,omitempty"`
	TravelDate         *time.Time           `json:"travelDate,omitempty" bson:"travel_date,omitempty"`
	TraveledWith       TraveledWith         `json:"traveledWith,omitempty" bson:"traveled_with,omitempty"`
	WouldRecommend     bool                 `json:"wouldRecommend" bson:"would_recommend"`
	HelpfulVotes       int                  `json:"helpfulVotes" bson:"helpful_votes"`
	VotedBy            []primitive.ObjectID `json:"-" bson:"voted_by"`
	IsVerifiedPurchase bool                 `json:"isVerifiedPurchase" bson:"is_verified_purchase"`
	Status             ReviewStatus         `json:"status" bson:"status"`
	ModerationNotes    string               `json:"moderationNotes,omitempty" bson:"moderation_notes,omitempty"`
	Response           *ReviewResponse      `json:"response,omitempty" bson:"response,omitempty"`
	CreatedAt          time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time            `json:"updatedAt" bson:"updated_at"`
}

func (r *Review) HasVoted(userID primitive.ObjectID) bool {
	for _, id := range r.VotedBy {
		if id == userID {
			return true
		}
	}
	return false
}

type RatingSummary struct {
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}
