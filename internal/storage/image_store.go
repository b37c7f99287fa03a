package storage

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ikkim/lego-inventory-backend/config"
	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
)

// Folders under the configured root folder
const (
	LegoSetFolder = "LegoSet"
	PartFolder    = "Part"
)

// ImageStore hosts part and set images
type ImageStore interface {
	// Upload stores a base64 image (raw or data URI) under folder
	Upload(ctx context.Context, folder, image string) (*model.Image, error)
	Delete(ctx context.Context, publicID string) error
}

// NewImageStore returns the store selected by cfg.Provider
func NewImageStore(cfg *config.ImageConfig, s3cfg *config.S3Config) ImageStore {
	if cfg.Provider == "local" {
		return NewLocalImageStore(cfg.LocalDir, cfg.LocalURL)
	}
	return NewS3ImageStore(s3cfg)
}

// DecodedImage is an upload payload whose content type was sniffed from its bytes
type DecodedImage struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeImage accepts "data:image/png;base64,..." or bare base64 and rejects
// anything that does not sniff as an image.
func DecodeImage(image string) (*DecodedImage, error) {
	payload := strings.TrimSpace(image)
	if payload == "" {
		return nil, apperrors.BadRequest(apperrors.ValidationRequired, "No image provided")
	}

	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 || !strings.Contains(payload[:comma], ";base64") {
			return nil, apperrors.BadRequest(apperrors.UploadInvalidFileType, "Image must be base64 encoded")
		}
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
			return nil, apperrors.BadRequest(apperrors.UploadInvalidFileType, "Image must be base64 encoded")
		}
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, apperrors.BadRequest(apperrors.UploadInvalidFileType, "Unsupported image type "+mime.String())
	}

	return &DecodedImage{
		Data:        data,
		ContentType: mime.String(),
		Extension:   mime.Extension(),
	}, nil
}

// JoinFolder builds "root/folder", tolerating an empty root
func JoinFolder(root, folder string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return folder
	}
	return root + "/" + folder
}
