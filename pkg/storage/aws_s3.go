package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// AWSS3Storage keeps catalog images in one bucket, served from the bucket's
// virtual-hosted URL or a CloudFront domain when configured.
type AWSS3Storage struct {
	client  s3Client
	bucket  string
	baseURL string
}

func NewAWSS3Storage(ctx context.Context, region, bucket, cdnDomain string) (*AWSS3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newAWSS3Storage(s3.NewFromConfig(cfg), region, bucket, cdnDomain), nil
}

func newAWSS3Storage(client s3Client, region, bucket, cdnDomain string) *AWSS3Storage {
	return &AWSS3Storage{
		client:  client,
		bucket:  bucket,
		baseURL: publicBaseURL(cdnDomain, fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)),
	}
}

func (a *AWSS3Storage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(request.Key),
		Body:        request.Reader,
		ContentType: aws.String(request.ContentType),
		Metadata:    request.Metadata,
	}
	if request.Size > 0 {
		input.ContentLength = aws.Int64(request.Size)
	}
	if request.CacheControl != "" {
		input.CacheControl = aws.String(request.CacheControl)
	}

	out, err := a.client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to S3: %w", request.Key, err)
	}

	return &UploadResponse{
		Key:      request.Key,
		URL:      a.baseURL + "/" + request.Key,
		Size:     request.Size,
		ETag:     aws.ToString(out.ETag),
		Location: "s3://" + a.bucket + "/" + request.Key,
	}, nil
}

// Delete is idempotent: a key that is already gone is not an error.
func (a *AWSS3Storage) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	var missing *types.NoSuchKey
	if err != nil && !errors.As(err, &missing) {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	return nil
}
