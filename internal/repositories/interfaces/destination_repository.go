package interfaces

import (
	"context"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DestinationFilter struct {
	Country   string
	Featured  *bool
	Tags      []string
	Search    string
	MinBudget *float64
	MaxBudget *float64
	Sort      string // popular, rating, name, newest
}

type DestinationRepository interface {
	Create(ctx context.Context, destination *models.Destination) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Destination, error)
	GetBySlug(ctx context.Context, slug string) (*models.Destination, error)
	Update(ctx context.Context, destination *models.Destination) error
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)

	List(ctx context.Context, filter *DestinationFilter, params *utils.PaginationParams) ([]*models.Destination, int64, error)
	Featured(ctx context.Context, limit int64) ([]*models.Destination, error)
	Popular(ctx context.Context, limit int64) ([]*models.Destination, error)
	Countries(ctx context.Context) ([]*models.CountrySummary, error)

	IncrementPopularity(ctx context.Context, id primitive.ObjectID) error
	AddImage(ctx context.Context, id primitive.ObjectID, image models.Image) error
}
