package repository

import (
	"context"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartRepository interface {
	Create(ctx context.Context, part *model.Part) error
	Upsert(ctx context.Context, part *model.Part, updateColumns []string) error
	FindAll(ctx context.Context) ([]model.Part, error)
	FindByID(ctx context.Context, id uint) (*model.Part, error)
	FindByKey(ctx context.Context, itemID int64, partID string) (*model.Part, error)
	FindOrphans(ctx context.Context) ([]model.Part, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	BulkUpdateFields(ctx context.Context, ids []uint, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type partRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepository{db: db}
}

// logWriteError reports a failed write. Unique violations are expected by the
// services (skip or 400) and only warrant a warning.
func logWriteError(message string, err error, fields map[string]interface{}) {
	if apperrors.IsUniqueViolation(err) {
		fields["error"] = err.Error()
		logger.Warn(message, fields)
		return
	}
	logger.Error(message, err, fields)
}

func (r *partRepository) Create(ctx context.Context, part *model.Part) error {
	logger.Debug("Creating part in database", map[string]interface{}{
		"item_id": part.ItemID,
		"part_id": part.PartID,
	})

	if err := r.db.WithContext(ctx).Create(part).Error; err != nil {
		logWriteError("Failed to create part in database", err, map[string]interface{}{
			"item_id": part.ItemID,
			"part_id": part.PartID,
		})
		return err
	}

	logger.Debug("Part created in database", map[string]interface{}{
		"id":      part.ID,
		"item_id": part.ItemID,
		"part_id": part.PartID,
	})
	return nil
}

// Upsert inserts part or, when (item_id, part_id) already exists, overwrites only
// updateColumns on the existing row. The statement is a single atomic write;
// part is reloaded afterwards so it reflects the stored row.
func (r *partRepository) Upsert(ctx context.Context, part *model.Part, updateColumns []string) error {
	logger.Debug("Upserting part in database", map[string]interface{}{
		"item_id": part.ItemID,
		"part_id": part.PartID,
		"columns": updateColumns,
	})

	conflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "part_id"}},
	}
	if len(updateColumns) > 0 {
		conflict.DoUpdates = clause.AssignmentColumns(updateColumns)
	} else {
		conflict.DoNothing = true
	}

	if err := r.db.WithContext(ctx).Clauses(conflict).Create(part).Error; err != nil {
		logger.Error("Failed to upsert part in database", err, map[string]interface{}{
			"item_id": part.ItemID,
			"part_id": part.PartID,
		})
		return err
	}

	stored, err := r.FindByKey(ctx, part.ItemID, part.PartID)
	if err != nil {
		logger.Error("Failed to reload upserted part", err, map[string]interface{}{
			"item_id": part.ItemID,
			"part_id": part.PartID,
		})
		return err
	}
	*part = *stored

	logger.Debug("Part upserted in database", map[string]interface{}{
		"id":      part.ID,
		"item_id": part.ItemID,
		"part_id": part.PartID,
	})
	return nil
}

func (r *partRepository) FindAll(ctx context.Context) ([]model.Part, error) {
	logger.Debug("Finding all parts", nil)

	var parts []model.Part
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&parts).Error; err != nil {
		logger.Error("Failed to find parts", err)
		return nil, err
	}

	logger.Debug("Parts found", map[string]interface{}{
		"count": len(parts),
	})
	return parts, nil
}

func (r *partRepository) FindByID(ctx context.Context, id uint) (*model.Part, error) {
	logger.Debug("Finding part by ID", map[string]interface{}{
		"id": id,
	})

	var part model.Part
	if err := r.db.WithContext(ctx).First(&part, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find part by ID", err, map[string]interface{}{
				"id": id,
			})
		}
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) FindByKey(ctx context.Context, itemID int64, partID string) (*model.Part, error) {
	var part model.Part
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND part_id = ?", itemID, partID).
		First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// FindOrphans returns parts that no set references
func (r *partRepository) FindOrphans(ctx context.Context) ([]model.Part, error) {
	logger.Debug("Finding orphan parts", nil)

	var parts []model.Part
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM lego_set_parts WHERE lego_set_parts.part_id = parts.id)").
		Order("id ASC").
		Find(&parts).Error
	if err != nil {
		logger.Error("Failed to find orphan parts", err)
		return nil, err
	}

	logger.Debug("Orphan parts found", map[string]interface{}{
		"count": len(parts),
	})
	return parts, nil
}

func (r *partRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	logger.Debug("Updating part fields", map[string]interface{}{
		"id":     id,
		"fields": len(fields),
	})

	result := r.db.WithContext(ctx).Model(&model.Part{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logWriteError("Failed to update part", result.Error, map[string]interface{}{
			"id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BulkUpdateFields applies the same column values to every listed part and
// returns how many rows matched.
func (r *partRepository) BulkUpdateFields(ctx context.Context, ids []uint, fields map[string]interface{}) (int64, error) {
	logger.Debug("Bulk updating parts", map[string]interface{}{
		"count":  len(ids),
		"fields": len(fields),
	})

	result := r.db.WithContext(ctx).Model(&model.Part{}).Where("id IN ?", ids).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to bulk update parts", result.Error, map[string]interface{}{
			"count": len(ids),
		})
		return 0, result.Error
	}

	logger.Debug("Parts bulk updated", map[string]interface{}{
		"matched": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

// Delete removes the part and its slots in every set. Sets themselves are kept.
func (r *partRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting part", map[string]interface{}{
		"id": id,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("part_id = ?", id).Delete(&model.LegoSetPart{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Part{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to delete part", err, map[string]interface{}{
				"id": id,
			})
		}
		return err
	}

	logger.Debug("Part deleted", map[string]interface{}{
		"id": id,
	})
	return nil
}
