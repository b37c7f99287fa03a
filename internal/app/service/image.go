package service

import (
	"context"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/ikkim/lego-inventory-backend/internal/storage"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
)

// replaceImage uploads the new asset, records it with save, and only then
// deletes the current one. A rejected payload or failed save leaves the current
// asset in place. Host failures surface as 500 with the host's message.
func replaceImage(ctx context.Context, images storage.ImageStore, folder string, current model.Image, image string, save func(*model.Image) error) (*model.Image, error) {
	uploaded, err := images.Upload(ctx, folder, image)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok {
			return nil, appErr
		}
		return nil, apperrors.Upstream(err, "Image upload failed")
	}

	if err := save(uploaded); err != nil {
		if delErr := images.Delete(ctx, uploaded.PublicID); delErr != nil {
			logger.Warn("Failed to remove unsaved image", map[string]interface{}{
				"public_id": uploaded.PublicID,
				"error":     delErr.Error(),
			})
		}
		return nil, err
	}

	if current.PublicID != "" {
		// the row already points at the new asset; a stale file is only logged
		if err := images.Delete(ctx, current.PublicID); err != nil {
			logger.Warn("Failed to delete previous image", map[string]interface{}{
				"public_id": current.PublicID,
				"error":     err.Error(),
			})
		}
	}
	return uploaded, nil
}
