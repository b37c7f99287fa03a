package repository

import (
	"context"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"gorm.io/gorm"
)

type LegoSetRepository interface {
	Create(ctx context.Context, set *model.LegoSet, partIDs []uint) error
	ReplaceParts(ctx context.Context, setID uint, partIDs []uint, fields map[string]interface{}) error
	FindAll(ctx context.Context) ([]model.LegoSet, error)
	FindByID(ctx context.Context, id uint) (*model.LegoSet, error)
	FindByName(ctx context.Context, name string) (*model.LegoSet, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	LatestSetCode(ctx context.Context) (string, error)
}

type legoSetRepository struct {
	db *gorm.DB
}

func NewLegoSetRepository(db *gorm.DB) LegoSetRepository {
	return &legoSetRepository{db: db}
}

func slotsFor(setID uint, partIDs []uint) []model.LegoSetPart {
	slots := make([]model.LegoSetPart, len(partIDs))
	for i, partID := range partIDs {
		slots[i] = model.LegoSetPart{LegoSetID: setID, Position: i, PartID: partID}
	}
	return slots
}

// Create inserts the set together with its ordered part slots
func (r *legoSetRepository) Create(ctx context.Context, set *model.LegoSet, partIDs []uint) error {
	logger.Debug("Creating lego set in database", map[string]interface{}{
		"set_id":   set.SetID,
		"set_name": set.SetName,
		"parts":    len(partIDs),
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(set).Error; err != nil {
			return err
		}
		if len(partIDs) == 0 {
			return nil
		}
		return tx.Create(slotsFor(set.ID, partIDs)).Error
	})
	if err != nil {
		logger.Error("Failed to create lego set in database", err, map[string]interface{}{
			"set_id":   set.SetID,
			"set_name": set.SetName,
		})
		return err
	}

	logger.Debug("Lego set created in database", map[string]interface{}{
		"id":     set.ID,
		"set_id": set.SetID,
	})
	return nil
}

// ReplaceParts overwrites the set's part list wholesale and applies fields in the same transaction
func (r *legoSetRepository) ReplaceParts(ctx context.Context, setID uint, partIDs []uint, fields map[string]interface{}) error {
	logger.Debug("Replacing lego set parts", map[string]interface{}{
		"id":    setID,
		"parts": len(partIDs),
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lego_set_id = ?", setID).Delete(&model.LegoSetPart{}).Error; err != nil {
			return err
		}
		if len(partIDs) > 0 {
			if err := tx.Create(slotsFor(setID, partIDs)).Error; err != nil {
				return err
			}
		}
		if len(fields) > 0 {
			return tx.Model(&model.LegoSet{}).Where("id = ?", setID).Updates(fields).Error
		}
		// bump updated_at so the set reflects the new part list
		return tx.Model(&model.LegoSet{}).Where("id = ?", setID).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	})
	if err != nil {
		logger.Error("Failed to replace lego set parts", err, map[string]interface{}{
			"id": setID,
		})
		return err
	}
	return nil
}

// loadParts fills Parts for every set in slot order
func (r *legoSetRepository) loadParts(db *gorm.DB, sets []model.LegoSet) error {
	if len(sets) == 0 {
		return nil
	}

	setIDs := make([]uint, len(sets))
	for i := range sets {
		setIDs[i] = sets[i].ID
	}

	var slots []model.LegoSetPart
	if err := db.Where("lego_set_id IN ?", setIDs).
		Order("lego_set_id ASC, position ASC").
		Find(&slots).Error; err != nil {
		return err
	}

	partIDs := make([]uint, 0, len(slots))
	seen := make(map[uint]bool, len(slots))
	for _, slot := range slots {
		if !seen[slot.PartID] {
			seen[slot.PartID] = true
			partIDs = append(partIDs, slot.PartID)
		}
	}

	partsByID := make(map[uint]model.Part, len(partIDs))
	if len(partIDs) > 0 {
		var parts []model.Part
		if err := db.Where("id IN ?", partIDs).Find(&parts).Error; err != nil {
			return err
		}
		for _, p := range parts {
			partsByID[p.ID] = p
		}
	}

	index := make(map[uint]int, len(sets))
	for i := range sets {
		index[sets[i].ID] = i
		sets[i].Parts = []model.Part{}
	}
	for _, slot := range slots {
		part, ok := partsByID[slot.PartID]
		if !ok {
			continue
		}
		i := index[slot.LegoSetID]
		sets[i].Parts = append(sets[i].Parts, part)
	}
	return nil
}

func (r *legoSetRepository) FindAll(ctx context.Context) ([]model.LegoSet, error) {
	logger.Debug("Finding all lego sets", nil)

	db := r.db.WithContext(ctx)
	var sets []model.LegoSet
	if err := db.Order("id ASC").Find(&sets).Error; err != nil {
		logger.Error("Failed to find lego sets", err)
		return nil, err
	}
	if err := r.loadParts(db, sets); err != nil {
		logger.Error("Failed to load lego set parts", err)
		return nil, err
	}

	logger.Debug("Lego sets found", map[string]interface{}{
		"count": len(sets),
	})
	return sets, nil
}

func (r *legoSetRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.LegoSet, error) {
	db := r.db.WithContext(ctx)

	var set model.LegoSet
	if err := db.Where(query, arg).First(&set).Error; err != nil {
		return nil, err
	}

	sets := []model.LegoSet{set}
	if err := r.loadParts(db, sets); err != nil {
		return nil, err
	}
	return &sets[0], nil
}

func (r *legoSetRepository) FindByID(ctx context.Context, id uint) (*model.LegoSet, error) {
	logger.Debug("Finding lego set by ID", map[string]interface{}{
		"id": id,
	})

	set, err := r.findOne(ctx, "id = ?", id)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find lego set by ID", err, map[string]interface{}{
				"id": id,
			})
		}
		return nil, err
	}
	return set, nil
}

func (r *legoSetRepository) FindByName(ctx context.Context, name string) (*model.LegoSet, error) {
	set, err := r.findOne(ctx, "set_name = ?", name)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find lego set by name", err, map[string]interface{}{
				"set_name": name,
			})
		}
		return nil, err
	}
	return set, nil
}

func (r *legoSetRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	logger.Debug("Updating lego set fields", map[string]interface{}{
		"id":     id,
		"fields": len(fields),
	})

	result := r.db.WithContext(ctx).Model(&model.LegoSet{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update lego set", result.Error, map[string]interface{}{
			"id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the set and its slots. The referenced parts stay.
func (r *legoSetRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting lego set", map[string]interface{}{
		"id": id,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lego_set_id = ?", id).Delete(&model.LegoSetPart{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.LegoSet{}, id)
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
			logger.Error("Failed to delete lego set", err, map[string]interface{}{
				"id": id,
			})
		}
		return err
	}

	logger.Debug("Lego set deleted", map[string]interface{}{
		"id": id,
	})
	return nil
}

// LatestSetCode returns the numerically highest SET-NNNN code, or "" when there is none
func (r *legoSetRepository) LatestSetCode(ctx context.Context) (string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&model.LegoSet{}).
		Where("set_id LIKE ?", model.SetCodePrefix+"%").
		Order("LENGTH(set_id) DESC, set_id DESC").
		Limit(1).
		Pluck("set_id", &codes).Error
	if err != nil {
		logger.Error("Failed to read latest set code", err)
		return "", err
	}
	if len(codes) == 0 {
		return "", nil
	}
	return codes[0], nil
}
