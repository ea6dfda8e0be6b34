package services

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/payment"

	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stand-ins for the Mongo repositories. Methods a test never
// reaches fall through to the embedded nil interface and panic.

type fakeUserRepo struct {
	interfaces.UserRepository
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return utils.NewConflictError("Email already registered")
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.RefreshTokens == nil {
		user.RefreshTokens = []string{}
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("User not found")
	}
	copied := *u
	copied.RefreshTokens = append([]string(nil), u.RefreshTokens...)
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	var id primitive.ObjectID
	for _, u := range r.users {
		if u.Email == email {
			id = u.ID
		}
	}
	r.mu.Unlock()
	if id.IsZero() {
		return nil, utils.NewNotFoundError("User not found")
	}
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, updates bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return utils.NewNotFoundError("User not found")
	}
	for key, value := range updates {
		switch key {
		case "password":
			u.Password = value.(string)
		case "refresh_tokens":
			u.RefreshTokens = []string{}
		case "is_email_verified":
			u.IsEmailVerified = value.(bool)
		case "email_verification_token":
			u.EmailVerificationToken = value.(string)
		case "email_verification_expires":
			u.EmailVerificationExp = optionalTime(value)
		case "password_reset_token":
			u.PasswordResetToken = value.(string)
		case "password_reset_expires":
			u.PasswordResetExp = optionalTime(value)
		case "last_login":
			u.LastLogin = optionalTime(value)
		case "profile_picture":
			u.ProfilePicture = value.(string)
		case "is_active":
			u.IsActive = value.(bool)
		}
	}
	return nil
}

func optionalTime(value interface{}) *time.Time {
	if t, ok := value.(time.Time); ok {
		return &t
	}
	return nil
}

func (r *fakeUserRepo) AddRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].RefreshTokens = append(r.users[id].RefreshTokens, token)
	return nil
}

func (r *fakeUserRepo) RotateRefreshToken(_ context.Context, id primitive.ObjectID, oldToken, newToken string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	for i, t := range u.RefreshTokens {
		if t == oldToken {
			u.RefreshTokens[i] = newToken
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) RemoveRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	kept := u.RefreshTokens[:0]
	for _, t := range u.RefreshTokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	u.RefreshTokens = kept
	return nil
}

func (r *fakeUserRepo) AddBooking(_ context.Context, id, bookingID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.BookingHistory = append(u.BookingHistory, bookingID)
	}
	return nil
}

type fakeTripRepo struct {
	interfaces.TripRepository
	mu      sync.Mutex
	trips   map[primitive.ObjectID]*models.Trip
	ratings map[primitive.ObjectID]models.Rating
	// updates records every field set passed to Update.
	updates []bson.M
	// beforeUpdate runs ahead of each Update, outside the lock, to stand in
	// for a booking that lands between an admin's read and write.
	beforeUpdate func()
}

func newFakeTripRepo(trips ...*models.Trip) *fakeTripRepo {
	r := &fakeTripRepo{trips: map[primitive.ObjectID]*models.Trip{}, ratings: map[primitive.ObjectID]models.Rating{}}
	for _, t := range trips {
		r.trips[t.ID] = t
	}
	return r
}

func (r *fakeTripRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return nil, utils.NewNotFoundError("Trip not found")
	}
	copied := *t
	copied.AvailableDates = append([]models.AvailableDate(nil), t.AvailableDates...)
	return &copied, nil
}

func (r *fakeTripRepo) GetByPackageID(ctx context.Context, packageID int) (*models.Trip, error) {
	r.mu.Lock()
	var id primitive.ObjectID
	for _, t := range r.trips {
		if t.PackageID != nil && *t.PackageID == packageID {
			id = t.ID
		}
	}
	r.mu.Unlock()
	if id.IsZero() {
		return nil, utils.NewNotFoundError("Trip not found")
	}
	return r.GetByID(ctx, id)
}

func (r *fakeTripRepo) ReserveSpots(_ context.Context, id primitive.ObjectID, departure time.Time, n int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok || t.Status != models.TripStatusActive || t.SpotsRemaining() < n {
		return false, nil
	}
	date, _ := t.FindDate(departure)
	if date == nil || date.SpotsAvailable < n {
		return false, nil
	}
	date.SpotsAvailable -= n
	t.CurrentBookings += n
	return true, nil
}

func (r *fakeTripRepo) ReleaseSpots(_ context.Context, id primitive.ObjectID, departure time.Time, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return nil
	}
	if date, _ := t.FindDate(departure); date != nil {
		date.SpotsAvailable += n
		if date.SpotsAvailable > date.Capacity {
			date.SpotsAvailable = date.Capacity
		}
	}
	t.CurrentBookings -= n
	if t.CurrentBookings < 0 {
		t.CurrentBookings = 0
	}
	return nil
}

func (r *fakeTripRepo) UpdateRating(_ context.Context, id primitive.ObjectID, rating models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return utils.NewNotFoundError("Trip not found")
	}
	t.Rating = rating
	r.ratings[id] = rating
	return nil
}

func (r *fakeTripRepo) Update(_ context.Context, id primitive.ObjectID, fields bson.M, expectBookings *int) (*models.Trip, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, fields)

	t, ok := r.trips[id]
	if !ok {
		return nil, utils.NewNotFoundError("Trip not found")
	}
	if expectBookings != nil && t.CurrentBookings != *expectBookings {
		return nil, utils.NewConflictError("Trip bookings changed while saving. Please retry.")
	}

	updated, err := applySet(t, fields, "current_bookings", "rating")
	if err != nil {
		return nil, err
	}
	r.trips[id] = updated
	copied := *updated
	return &copied, nil
}

// applySet mimics a $set of top-level fields by round-tripping doc through
// BSON. Keys in skip are ignored.
func applySet[T any](doc *T, fields bson.M, skip ...string) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	for key, value := range fields {
		if !slices.Contains(skip, key) {
			m[key] = value
		}
	}
	if raw, err = bson.Marshal(m); err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *fakeTripRepo) AddImage(_ context.Context, id primitive.ObjectID, image models.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return utils.NewNotFoundError("Trip not found")
	}
	images := make([]models.Image, 0, len(t.Images)+1)
	for _, img := range t.Images {
		if image.IsPrimary {
			img.IsPrimary = false
		}
		images = append(images, img)
	}
	t.Images = append(images, image)
	t.PrimaryImage = models.PrimaryImageURL(t.Images)
	return nil
}

type fakeBookingRepo struct {
	interfaces.BookingRepository
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
	// codeCollisions makes the next n inserts fail with a duplicate code.
	codeCollisions int
	inserts        int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[primitive.ObjectID]*models.Booking{}}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.codeCollisions > 0 {
		r.codeCollisions--
		return utils.NewConflictError("Duplicate confirmation code")
	}
	for _, b := range r.bookings {
		if b.ConfirmationCode == booking.ConfirmationCode {
			return utils.NewConflictError("Duplicate confirmation code")
		}
	}
	booking.ID = primitive.NewObjectID()
	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *fakeBookingRepo) put(booking *models.Booking) *models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	stored := *booking
	r.bookings[booking.ID] = &stored
	return booking
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, utils.NewNotFoundError("Booking not found")
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) GetByConfirmationCode(ctx context.Context, code string) (*models.Booking, error) {
	r.mu.Lock()
	var id primitive.ObjectID
	for _, b := range r.bookings {
		if b.ConfirmationCode == code {
			id = b.ID
		}
	}
	r.mu.Unlock()
	if id.IsZero() {
		return nil, utils.NewNotFoundError("Booking not found")
	}
	return r.GetByID(ctx, id)
}

func (r *fakeBookingRepo) SetCheckoutSession(_ context.Context, id primitive.ObjectID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.bookings[id]
	b.StripeSessionID = sessionID
	b.PaymentStatus = models.PaymentStatusProcessing
	return nil
}

func (r *fakeBookingRepo) MarkPaid(_ context.Context, sessionID, intentID string) (*models.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.StripeSessionID != sessionID {
			continue
		}
		if b.PaymentStatus == models.PaymentStatusCompleted {
			copied := *b
			return &copied, false, nil
		}
		b.PaymentStatus = models.PaymentStatusCompleted
		b.StripePaymentIntentID = intentID
		if b.BookingStatus != models.BookingStatusCancelled {
			b.BookingStatus = models.BookingStatusConfirmed
		}
		copied := *b
		return &copied, true, nil
	}
	return nil, false, utils.NewNotFoundError("Booking not found")
}

func (r *fakeBookingRepo) MarkPaymentFailed(_ context.Context, intentID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.StripePaymentIntentID == intentID {
			b.PaymentStatus = models.PaymentStatusFailed
			copied := *b
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("Booking not found")
}

func (r *fakeBookingRepo) Cancel(_ context.Context, id primitive.ObjectID, cancellation *models.Cancellation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return false, utils.NewNotFoundError("Booking not found")
	}
	if b.BookingStatus == models.BookingStatusCancelled {
		return false, nil
	}
	c := *cancellation
	b.Cancellation = &c
	b.BookingStatus = models.BookingStatusCancelled
	return true, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.BookingStatus, internalNotes string) (*models.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, false, utils.NewNotFoundError("Booking not found")
	}
	if b.BookingStatus == models.BookingStatusCancelled {
		return nil, false, nil
	}
	b.BookingStatus = status
	if internalNotes != "" {
		b.InternalNotes = internalNotes
	}
	copied := *b
	return &copied, true, nil
}

func (r *fakeBookingRepo) UpdateRefund(_ context.Context, id primitive.ObjectID, refundStatus models.RefundStatus, paymentStatus models.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.bookings[id]
	if b.Cancellation != nil {
		b.Cancellation.RefundStatus = refundStatus
	}
	if paymentStatus != "" {
		b.PaymentStatus = paymentStatus
	}
	return nil
}

func (r *fakeBookingRepo) FindVerifiedForReview(_ context.Context, userID, tripID primitive.ObjectID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.User == userID && b.Trip == tripID && b.PaymentStatus == models.PaymentStatusCompleted {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) DueForReminder(_ context.Context, from, until time.Time, marker string) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		departure := b.SelectedDate.DepartureDate
		if b.BookingStatus != models.BookingStatusConfirmed || departure.Before(from) || departure.After(until) {
			continue
		}
		sent := false
		for _, m := range b.RemindersSent {
			sent = sent || m == marker
		}
		if !sent {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) AddReminder(_ context.Context, id primitive.ObjectID, marker string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[id].RemindersSent = append(r.bookings[id].RemindersSent, marker)
	return nil
}

func (r *fakeBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

type fakePaymentRepo struct {
	interfaces.PaymentRepository
	mu       sync.Mutex
	payments []*models.Payment
}

func (r *fakePaymentRepo) Create(_ context.Context, record *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = primitive.NewObjectID()
	stored := *record
	r.payments = append(r.payments, &stored)
	return nil
}

func (r *fakePaymentRepo) GetChargeByIntentID(_ context.Context, intentID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.StripePaymentIntentID == intentID && p.Type == models.PaymentTypePayment {
			copied := *p
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("Payment not found")
}

func (r *fakePaymentRepo) UpdateStatusByIntentID(_ context.Context, intentID string, status models.PaymentRecordStatus) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.StripePaymentIntentID == intentID && p.Type == models.PaymentTypePayment {
			p.Status = status
			copied := *p
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("Payment not found")
}

func (r *fakePaymentRepo) ofType(t models.PaymentType) []*models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Payment
	for _, p := range r.payments {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*models.ProcessedEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[string]*models.ProcessedEvent{}}
}

func (r *fakeEventRepo) Exists(_ context.Context, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[eventID]
	return ok, nil
}

func (r *fakeEventRepo) Record(_ context.Context, event *models.ProcessedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; ok {
		return utils.NewConflictError("Event already processed")
	}
	r.events[event.ID] = event
	return nil
}

type fakeReviewRepo struct {
	interfaces.ReviewRepository
	mu      sync.Mutex
	reviews map[primitive.ObjectID]*models.Review
	// beforeUpdate runs ahead of each Update, outside the lock.
	beforeUpdate func()
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[primitive.ObjectID]*models.Review{}}
}

func (r *fakeReviewRepo) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review.ID = primitive.NewObjectID()
	stored := *review
	r.reviews[review.ID] = &stored
	return nil
}

func (r *fakeReviewRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, utils.NewNotFoundError("Review not found")
	}
	copied := *review
	copied.VotedBy = append([]primitive.ObjectID(nil), review.VotedBy...)
	return &copied, nil
}

func (r *fakeReviewRepo) GetByUserAndTrip(ctx context.Context, userID, tripID primitive.ObjectID) (*models.Review, error) {
	r.mu.Lock()
	var id primitive.ObjectID
	for _, review := range r.reviews {
		if review.User == userID && review.Trip == tripID {
			id = review.ID
		}
	}
	r.mu.Unlock()
	if id.IsZero() {
		return nil, utils.NewNotFoundError("Review not found")
	}
	return r.GetByID(ctx, id)
}

func (r *fakeReviewRepo) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Review, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.reviews[id]
	if !ok {
		return nil, utils.NewNotFoundError("Review not found")
	}
	updated, err := applySet(current, fields, "helpful_votes", "voted_by")
	if err != nil {
		return nil, err
	}
	r.reviews[id] = updated
	copied := *updated
	return &copied, nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) AddHelpfulVote(_ context.Context, id, userID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review := r.reviews[id]
	if review.HasVoted(userID) {
		return false, nil
	}
	review.VotedBy = append(review.VotedBy, userID)
	review.HelpfulVotes++
	return true, nil
}

func (r *fakeReviewRepo) ApprovedSummary(_ context.Context, tripID primitive.ObjectID) (*models.RatingSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &models.RatingSummary{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	total := 0
	for _, review := range r.reviews {
		if review.Trip != tripID || review.Status != models.ReviewStatusApproved {
			continue
		}
		summary.Distribution[review.Rating.Overall]++
		summary.Count++
		total += review.Rating.Overall
	}
	if summary.Count > 0 {
		summary.Average = math.Round(float64(total)/float64(summary.Count)*10) / 10
	}
	return summary, nil
}

type fakeGateway struct {
	mu        sync.Mutex
	sessions  map[string]*payment.CheckoutSession
	refunds   []*payment.RefundRequest
	refundErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*payment.CheckoutSession{}}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, request *payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	session := &payment.CheckoutSession{
		ID:            "cs_test_" + utils.GenerateRequestID(),
		URL:           "https://checkout.example/pay",
		PaymentStatus: "unpaid",
		AmountTotal:   request.Amount,
		Currency:      request.Currency,
		Metadata:      request.Metadata,
	}
	g.sessions[session.ID] = session
	return session, nil
}

func (g *fakeGateway) GetCheckoutSession(_ context.Context, sessionID string) (*payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such checkout session")
	}
	return session, nil
}

// pay marks a session paid with the given payment intent.
func (g *fakeGateway) pay(sessionID, intentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sessionID].PaymentStatus = "paid"
	g.sessions[sessionID].PaymentIntentID = intentID
}

func (g *fakeGateway) RefundPayment(_ context.Context, request *payment.RefundRequest) (*payment.RefundResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, request)
	return &payment.RefundResponse{RefundID: "re_test", Status: "succeeded", Amount: request.Amount}, nil
}

// ValidateWebhook accepts any payload signed "valid" and reads it as a
// Stripe event envelope.
func (g *fakeGateway) ValidateWebhook(_ context.Context, payload []byte, signature string) (*payment.WebhookEvent, error) {
	if signature != "valid" {
		return nil, payment.ErrInvalidSignature
	}
	parsed := gjson.ParseBytes(payload)
	return &payment.WebhookEvent{
		EventID:   parsed.Get("id").String(),
		EventType: parsed.Get("type").String(),
		CreatedAt: parsed.Get("created").Int(),
		Object:    []byte(parsed.Get("data.object").Raw),
	}, nil
}

type sentNotification struct {
	Channel  models.OutboxChannel
	To       string
	Template string
	Data     map[string]string
}

type fakeNotifications struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifications) Email(_ context.Context, to, template string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Channel: models.ChannelEmail, To: to, Template: template, Data: data})
	return nil
}

func (n *fakeNotifications) SMS(_ context.Context, to, template string, data map[string]string) error {
	if to == "" {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Channel: models.ChannelSMS, To: to, Template: template, Data: data})
	return nil
}

func (n *fakeNotifications) byTemplate(template string) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Template == template {
			out = append(out, s)
		}
	}
	return out
}

type fakeNotifier struct {
	mu      sync.Mutex
	changed []primitive.ObjectID
}

func (n *fakeNotifier) TripAvailabilityChanged(tripID primitive.ObjectID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, tripID)
}

// newTestTrip returns an active moderate-policy trip with one departure
// `days` days from now.
func newTestTrip(capacity int, days int) *models.Trip {
	departure := time.Now().Add(time.Duration(days) * 24 * time.Hour).Truncate(time.Second)
	packageID := 7
	return &models.Trip{
		ID:        primitive.NewObjectID(),
		PackageID: &packageID,
		Name:      "Hunza Valley Explorer",
		Price:     models.Price{Amount: 100, Currency: "USD", PerPerson: true},
		AvailableDates: []models.AvailableDate{{
			DepartureDate:  departure,
			ReturnDate:     departure.Add(5 * 24 * time.Hour),
			SpotsAvailable: capacity,
			Capacity:       capacity,
		}},
		MaxCapacity:        capacity,
		CancellationPolicy: models.PolicyModerate,
		Status:             models.TripStatusActive,
	}
}
