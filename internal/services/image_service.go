package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"
	"gbtravel/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultMaxImageSize = 5 << 20

type ImageUpload struct {
	Reader      io.Reader
	ContentType string
	Size        int64
	Alt         string
	IsPrimary   bool
}

// ImageService stores catalog images and attaches them to trips and destinations.
type ImageService interface {
	UploadTripImage(ctx context.Context, tripID primitive.ObjectID, upload *ImageUpload) (*models.TripView, error)
	UploadDestinationImage(ctx context.Context, destinationID primitive.ObjectID, upload *ImageUpload) (*models.Destination, error)
}

type imageService struct {
	storage      storage.StorageProvider
	trips        TripService
	destinations DestinationService
	maxSize      int64
	logger       *logger.Logger
}

// NewImageService rejects uploads above maxSize bytes; zero means 5MB.
func NewImageService(provider storage.StorageProvider, trips TripService, destinations DestinationService, maxSize int64, logger *logger.Logger) ImageService {
	if maxSize <= 0 {
		maxSize = defaultMaxImageSize
	}
	return &imageService{
		storage:      provider,
		trips:        trips,
		destinations: destinations,
		maxSize:      maxSize,
		logger:       logger,
	}
}

func (s *imageService) UploadTripImage(ctx context.Context, tripID primitive.ObjectID, upload *ImageUpload) (*models.TripView, error) {
	image, key, err := s.store(ctx, "trips", tripID, upload)
	if err != nil {
		return nil, err
	}

	trip, err := s.trips.AddImage(ctx, tripID, *image)
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	return trip, nil
}

func (s *imageService) UploadDestinationImage(ctx context.Context, destinationID primitive.ObjectID, upload *ImageUpload) (*models.Destination, error) {
	image, key, err := s.store(ctx, "destinations", destinationID, upload)
	if err != nil {
		return nil, err
	}

	destination, err := s.destinations.AddImage(ctx, destinationID, *image)
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	return destination, nil
}

func (s *imageService) store(ctx context.Context, folder string, ownerID primitive.ObjectID, upload *ImageUpload) (*models.Image, string, error) {
	if s.storage == nil {
		return nil, "", utils.NewBadRequestError("Image uploads are not configured")
	}
	ext, ok := storage.ImageExtension(upload.ContentType)
	if !ok {
		return nil, "", utils.NewBadRequestError("Only JPEG, PNG, WebP and GIF images are allowed")
	}
	tooLarge := utils.NewBadRequestError("Image must be %dMB or smaller", s.maxSize>>20)
	if upload.Size > s.maxSize {
		return nil, "", tooLarge
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, s.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, "", tooLarge
	}

	data, dims, err := utils.DownscaleImage(data, upload.ContentType, utils.MaxImageWidth, utils.MaxImageHeight)
	if err != nil {
		return nil, "", err
	}

	metadata := map[string]string{"owner": ownerID.Hex()}
	if dims != nil {
		metadata["width"] = fmt.Sprint(dims.Width)
		metadata["height"] = fmt.Sprint(dims.Height)
	}

	key := storage.ObjectKey(folder, ownerID.Hex(), ext)
	result, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:          key,
		Reader:       bytes.NewReader(data),
		ContentType:  upload.ContentType,
		Size:         int64(len(data)),
		CacheControl: "public, max-age=31536000",
		Metadata:     metadata,
	})
	if err != nil {
		return nil, "", err
	}

	return &models.Image{URL: result.URL, Alt: upload.Alt, IsPrimary: upload.IsPrimary}, key, nil
}

func (s *imageService) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to delete orphaned image")
	}
}
