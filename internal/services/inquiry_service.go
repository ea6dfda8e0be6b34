package services

import (
	"context"
	"strings"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InquiryService interface {
	Submit(ctx context.Context, request *CreateInquiryRequest) (*InquiryReceipt, error)

	// Admin
	ListInquiries(ctx context.Context, status models.InquiryStatus, params *utils.PaginationParams) ([]*models.Inquiry, int64, error)
	GetInquiry(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error)
	UpdateInquiry(ctx context.Context, actor Actor, id primitive.ObjectID, request *UpdateInquiryRequest) (*models.Inquiry, error)
	DeleteInquiry(ctx context.Context, id primitive.ObjectID) error
}

type CreateInquiryRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,phone_number"`
	Package    string `json:"package" validate:"max=200"`
	TravelDate string `json:"travelDate" validate:"max=50"`
	GroupSize  string `json:"groupSize" validate:"max=50"`
	Message    string `json:"message" validate:"max=2000"`
}

type UpdateInquiryRequest struct {
	Status models.InquiryStatus `json:"status" validate:"omitempty,oneof=new contacted in-progress resolved closed"`
	Notes  *string              `json:"notes" validate:"omitempty,max=2000"`
}

type InquiryReceipt struct {
	ID          primitive.ObjectID `json:"id"`
	SubmittedAt time.Time          `json:"submittedAt"`
}

type inquiryService struct {
	inquiryRepo   interfaces.InquiryRepository
	notifications NotificationService
	logger        *logger.Logger
	now           func() time.Time
}

func NewInquiryService(inquiryRepo interfaces.InquiryRepository, notifications NotificationService, logger *logger.Logger) InquiryService {
	return &inquiryService{
		inquiryRepo:   inquiryRepo,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *inquiryService) Submit(ctx context.Context, request *CreateInquiryRequest) (*InquiryReceipt, error) {
	inquiry := &models.Inquiry{
		Name:       strings.TrimSpace(request.Name),
		Email:      utils.NormalizeEmail(request.Email),
		Phone:      strings.TrimSpace(request.Phone),
		Package:    request.Package,
		TravelDate: request.TravelDate,
		GroupSize:  request.GroupSize,
		Message:    request.Message,
		Status:     models.InquiryStatusNew,
	}
	if err := s.inquiryRepo.Create(ctx, inquiry); err != nil {
		return nil, err
	}

	pkg := inquiry.Package
	if pkg == "" {
		pkg = "our packages"
	}
	err := s.notifications.Email(ctx, inquiry.Email, models.TemplateInquiryReceived, map[string]string{
		"name":    inquiry.Name,
		"package": pkg,
	})
	if err != nil {
		s.logger.WithError(err).WithField("inquiry_id", inquiry.ID.Hex()).Warn("Failed to queue inquiry acknowledgement")
	}

	return &InquiryReceipt{ID: inquiry.ID, SubmittedAt: inquiry.CreatedAt}, nil
}

func (s *inquiryService) ListInquiries(ctx context.Context, status models.InquiryStatus, params *utils.PaginationParams) ([]*models.Inquiry, int64, error) {
	return s.inquiryRepo.List(ctx, status, params)
}

func (s *inquiryService) GetInquiry(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error) {
	return s.inquiryRepo.GetByID(ctx, id)
}

func (s *inquiryService) UpdateInquiry(ctx context.Context, actor Actor, id primitive.ObjectID, request *UpdateInquiryRequest) (*models.Inquiry, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := bson.M{}
	if request.Status != "" {
		updates["status"] = request.Status
		if inquiry.Status == models.InquiryStatusNew && request.Status != models.InquiryStatusNew && inquiry.RespondedAt == nil {
			updates["responded_at"] = s.now().UTC()
			updates["responded_by"] = actor.UserID
		}
	}
	if request.Notes != nil {
		updates["notes"] = *request.Notes
	}
	if len(updates) == 0 {
		return inquiry, nil
	}

	return s.inquiryRepo.Update(ctx, id, updates)
}

func (s *inquiryService) DeleteInquiry(ctx context.Context, id primitive.ObjectID) error {
	return s.inquiryRepo.Delete(ctx, id)
}
