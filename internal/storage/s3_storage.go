package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ikkim/lego-inventory-backend/config"
	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"github.com/pkg/errors"
)

type S3ImageStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	var awsCfg aws.Config
	var err error

	// Static keys when configured, otherwise the default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			logger.Warn("Falling back to region-only AWS config", map[string]interface{}{
				"error": err.Error(),
			})
			awsCfg = aws.Config{
				Region: cfg.Region,
			}
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
	}
}

func (s *S3ImageStore) Upload(ctx context.Context, folder, image string) (*model.Image, error) {
	decoded, err := DecodeImage(image)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), decoded.Extension)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(decoded.Data),
		ContentType: aws.String(decoded.ContentType),
	})
	if err != nil {
		logger.Error("Failed to upload image to S3", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    key,
		})
		return nil, errors.Wrap(err, "upload image")
	}

	logger.Info("Image uploaded", map[string]interface{}{
		"key":          key,
		"content_type": decoded.ContentType,
		"size":         len(decoded.Data),
	})
	return &model.Image{PublicID: key, URL: s.objectURL(key)}, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		logger.Error("Failed to delete image from S3", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    publicID,
		})
		return errors.Wrap(err, "delete image")
	}
	return nil
}

func (s *S3ImageStore) objectURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}
