package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InquiryStatus string

const (
	InquiryStatusNew        InquiryStatus = "new"
	InquiryStatusContacted  InquiryStatus = "contacted"
	InquiryStatusInProgress InquiryStatus = "in-progress"
	InquiryStatusResolved   InquiryStatus = "resolved"
	InquiryStatusClosed     InquiryStatus = "closed"
)

type Inquiry struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name        string              `json:"name" bson:"name"`
	Email       string              `json:"email" bson:"email"`
	Phone       string              `json:"phone" bson:"phone"`
	Package     string              `json:"package,omitempty" bson:"package,omitempty"`
	TravelDate  string              `json:"travelDate,omitempty" bson:"travel_date,omitempty"`
	GroupSize   string              `json:"groupSize,omitempty" bson:"group_size,omitempty"`
	Message     string              `json:"message,omitempty" bson:"message,omitempty"`
	Status      InquiryStatus       `json:"status" bson:"status"`
	Notes       string              `json:"notes,omitempty" bson:"notes,omitempty"`
	RespondedAt *time.Time          `json:"respondedAt,omitempty" bson:"responded_at,omitempty"`
	RespondedBy *primitive.ObjectID `json:"respondedBy,omitempty" bson:"responded_by,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updated_at"`
}
