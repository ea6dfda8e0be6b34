package interfaces

import (
	"context"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentFilter struct {
	User   *primitive.ObjectID
	Status models.PaymentRecordStatus
	Type   models.PaymentType
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	GetChargeByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	UpdateStatusByIntentID(ctx context.Context, intentID string, status models.PaymentRecordStatus) (*models.Payment, error)
	List(ctx context.Context, filter *PaymentFilter, params *utils.PaginationParams) ([]*models.Payment, int64, error)
	Stats(ctx context.Context, now time.Time) (*models.PaymentStats, error)
}

// ProcessedEventRepository is the ledger of provider webhook events already applied.
type ProcessedEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	// Record fails with a conflict error when the event id is already present.
	Record(ctx context.Context, event *models.ProcessedEvent) error
}
