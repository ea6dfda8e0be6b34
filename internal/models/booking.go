package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string
type BookingStatus string
type RefundStatus string
type BookingSource string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusProcessing        PaymentStatus = "processing"
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially-refunded"

	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no-show"

	RefundStatusPending    RefundStatus = "pending"
	RefundStatusProcessing RefundStatus = "processing"
	RefundStatusCompleted  RefundStatus = "completed"
	RefundStatusDenied     RefundStatus = "denied"
	RefundStatusFailed     RefundStatus = "failed"

	BookingSourceWebsite BookingSource = "website"
	BookingSourcePhone   BookingSource = "phone"
	BookingSourceEmail   BookingSource = "email"
	BookingSourceWalkIn  BookingSource = "walk-in"
	BookingSourcePartner BookingSource = "partner"
)

const ReminderSevenDay = "7-day"

type SelectedDate struct {
	DepartureDate time.Time `json:"departureDate" bson:"departure_date" validate:"required"`
	ReturnDate    time.Time `json:"returnDate" bson:"return_date" validate:"required"`
}

type Traveler struct {
	FirstName           string     `json:"firstName" bson:"first_name" validate:"required,max=100"`
	LastName            string     `json:"lastName" bson:"last_name" validate:"required,max=100"`
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty" bson:"date_of_birth,omitempty"`
	PassportNumber      string     `json:"passportNumber,omitempty" bson:"passport_number,omitempty"`
	Nationality         string     `json:"nationality,omitempty" bson:"nationality,omitempty"`
	SpecialRequirements string     `json:"specialRequirements,omitempty" bson:"special_requirements,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name,omitempty" bson:"name,omitempty"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty"`
}

type ContactInfo struct {
	Email            string            `json:"email" bson:"email" validate:"required,email"`
	Phone            string            `json:"phone,omitempty" bson:"phone,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty" bson:"emergency_contact,omitempty"`
}

type Pricing struct {
	PricePerPerson float64 `json:"pricePerPerson" bson:"price_per_person"`
	Subtotal       float64 `json:"subtotal" bson:"subtotal"`
	Taxes          float64 `json:"taxes" bson:"taxes"`
	Fees           float64 `json:"fees" bson:"fees"`
	AddOns         float64 `json:"addOns" bson:"add_ons"`
	Discount       float64 `json:"discount" bson:"discount"`
	TotalPrice     float64 `json:"totalPrice" bson:"total_price"`
	Currency       string  `json:"currency" bson:"currency"`
}

type AddOn struct {
	Name     string  `json:"name" bson:"name" validate:"required"`
	Price    float64 `json:"price" bson:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" bson:"quantity" validate:"gte=0"`
}

type Cancellation struct {
	IsCancelled  bool               `json:"isCancelled" bson:"is_cancelled"`
	CancelledAt  time.Time          `json:"cancelledAt" bson:"cancelled_at"`
	CancelledBy  primitive.ObjectID `json:"cancelledBy" bson:"cancelled_by"`
	Reason       string             `json:"reason,omitempty" bson:"reason,omitempty"`
	RefundAmount float64            `json:"refundAmount" bson:"refund_amount"`
	RefundStatus RefundStatus       `json:"refundStatus" bson:"refund_status"`
}

type Booking struct {
	ID                    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConfirmationCode      string             `json:"confirmationCode" bson:"confirmation_code"`
	User                  primitive.ObjectID `json:"user" bson:"user"`
	Trip                  primitive.ObjectID `json:"trip" bson:"trip"`
	SelectedDate          SelectedDate       `json:"selectedDate" bson:"selected_date"`
	NumberOfTravelers     int                `json:"numberOfTravelers" bson:"number_of_travelers"`
	Travelers             []Traveler         `json:"travelers" bson:"travelers"`
	ContactInfo           ContactInfo        `json:"contactInfo" bson:"contact_info"`
	BillingAddress        *Address           `json:"billingAddress,omitempty" bson:"billing_address,omitempty"`
	Pricing               Pricing            `json:"pricing" bson:"pricing"`
	AddOns                []AddOn            `json:"addOns" bson:"add_ons"`
	SpecialRequests       string             `json:"specialRequests,omitempty" bson:"special_requests,omitempty"`
	PaymentStatus         PaymentStatus      `json:"paymentStatus" bson:"payment_status"`
	BookingStatus         BookingStatus      `json:"bookingStatus" bson:"booking_status"`
	PaymentMethod         string             `json:"paymentMethod,omitempty" bson:"payment_method,omitempty"`
	StripeSessionID       string             `json:"stripeSessionId,omitempty" bson:"stripe_session_id,omitempty"`
	StripePaymentIntentID string             `json:"stripePaymentIntentId,omitempty" bson:"stripe_payment_intent_id,omitempty"`
	Cancellation          *Cancellation      `json:"cancellation,omitempty" bson:"cancellation,omitempty"`
	RemindersSent         []string           `json:"remindersSent,omitempty" bson:"reminders_sent,omitempty"`
	InternalNotes         string             `json:"internalNotes,omitempty" bson:"internal_notes,omitempty"`
	Source                BookingSource      `json:"source" bson:"source"`
	CreatedAt             time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt             time.Time          `json:"updatedAt" bson:"updated_at"`
}

// BookingSummary is what anyone holding a confirmation code may see.
type BookingSummary struct {
	ConfirmationCode  string        `json:"confirmationCode"`
	BookingStatus     BookingStatus `json:"bookingStatus"`
	TripName          string        `json:"tripName"`
	DepartureDate     time.Time     `json:"departureDate"`
	NumberOfTravelers int           `json:"numberOfTravelers"`
}

type BookingStats struct {
	Total            int64            `json:"total"`
	ThisMonth        int64            `json:"thisMonth"`
	ThisYear         int64            `json:"thisYear"`
	StatusBreakdown  map[string]int64 `json:"statusBreakdown"`
	RevenueThisMonth float64          `json:"revenueThisMonth"`
}
