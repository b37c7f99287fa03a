package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/internal/app/repository"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/ikkim/lego-inventory-backend/internal/storage"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"github.com/ikkim/lego-inventory-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrPartNotFound = errors.New("part not found")
	ErrPartExists   = errors.New("part already exists")
	ErrInvalidPart  = errors.New("invalid part")
	ErrNoUpdates    = errors.New("no fields to update")
	ErrNoImage      = errors.New("no image provided")
)

const partRequiredMessage = "'item_id', 'part_id' and 'name' are required"

// PartInput is a part as sent by the dashboard or read from a workbook.
// Keys follow the JSON names of model.Part; values may be numbers or strings.
type PartInput map[string]interface{}

type fieldKind int

const (
	kindText fieldKind = iota
	kindInt
	kindInt64
	kindFloat
	kindWeight
	kindPrice
	kindBsStandard
)

type partField struct {
	column string
	kind   fieldKind
}

// partFields whitelists the writable part attributes by their client names
var partFields = map[string]partField{
	"item_id":          {"item_id", kindInt64},
	"part_id":          {"part_id", kindText},
	"name":             {"name", kindText},
	"item_description": {"item_description", kindText},
	"color":            {"color", kindText},
	"PaB":              {"pab", kindFloat},
	"US":               {"us", kindPrice},
	"weight":           {"weight", kindWeight},
	"quantity":         {"quantity", kindInt},
	"ordered":          {"ordered", kindInt},
	"inventory":        {"inventory", kindInt},
	"qSet":             {"q_set", kindInt},
	"needed":           {"needed", kindInt},
	"World":            {"world", kindFloat},
	"cost":             {"cost", kindFloat},
	"salesPrice":       {"sales_price", kindFloat},
	"pabPrice_x":       {"pab_price_x", kindFloat},
	"costPrice_y":      {"cost_price_y", kindFloat},
	"bsStandard":       {"bs_standard", kindBsStandard},
	"BS/Standard":      {"bs_standard", kindBsStandard},
}

func convertField(kind fieldKind, v interface{}) (interface{}, bool) {
	switch kind {
	case kindText:
		return util.ToString(v), true
	case kindInt:
		return util.ToInt(v), true
	case kindInt64:
		return util.ToInt64(v)
	case kindFloat:
		return util.ToFloat(v), true
	case kindWeight:
		return util.ParseWeight(v), true
	case kindPrice:
		return util.ParseUSPrice(v), true
	case kindBsStandard:
		return model.NormalizeBsStandard(util.ToString(v)), true
	}
	return nil, false
}

// columns converts every present, whitelisted key into its column value
func (in PartInput) columns() (map[string]interface{}, error) {
	cols := make(map[string]interface{}, len(in))
	for key, raw := range in {
		field, ok := partFields[key]
		if !ok || raw == nil {
			continue
		}
		value, ok := convertField(field.kind, raw)
		if !ok {
			return nil, fmt.Errorf("invalid value for '%s'", key)
		}
		cols[field.column] = value
	}
	// both spellings of the flag map to one column; the workbook header wins
	if alt := in["BS/Standard"]; alt != nil {
		cols["bs_standard"] = model.NormalizeBsStandard(util.ToString(alt))
	}
	return cols, nil
}

// key returns the composite identity of the input, reporting whether it is complete
func (in PartInput) key() (int64, string, string, bool) {
	itemID, ok := util.ToInt64(in["item_id"])
	partID := util.ToString(in["part_id"])
	name := util.ToString(in["name"])
	if !ok || partID == "" || name == "" {
		return 0, "", "", false
	}
	return itemID, partID, name, true
}

func setPartColumn(p *model.Part, column string, v interface{}) {
	switch column {
	case "item_id":
		p.ItemID = v.(int64)
	case "part_id":
		p.PartID = v.(string)
	case "name":
		p.Name = v.(string)
	case "item_description":
		p.ItemDescription = v.(string)
	case "color":
		p.Color = v.(string)
	case "pab":
		p.PaB = v.(float64)
	case "us":
		p.US = v.(float64)
	case "weight":
		p.Weight = v.(float64)
	case "quantity":
		p.Quantity = v.(int)
	case "ordered":
		p.Ordered = v.(int)
	case "inventory":
		p.Inventory = v.(int)
	case "q_set":
		p.QSet = v.(int)
	case "needed":
		p.Needed = v.(int)
	case "world":
		p.World = v.(float64)
	case "cost":
		p.Cost = v.(float64)
	case "sales_price":
		p.SalesPrice = v.(float64)
	case "pab_price_x":
		p.PabPriceX = v.(float64)
	case "cost_price_y":
		p.CostPriceY = v.(float64)
	case "bs_standard":
		p.BsStandard = v.(model.BsStandard)
	}
}

// newPart applies insert-time defaults and then the given columns
func newPart(cols map[string]interface{}) *model.Part {
	part := &model.Part{
		Quantity:   1,
		Ordered:    0,
		Inventory:  0,
		BsStandard: model.BsStandardBS,
	}
	for column, value := range cols {
		setPartColumn(part, column, value)
	}
	return part
}

func partNotFound(id uint) error {
	return apperrors.Wrap(ErrPartNotFound, http.StatusNotFound, apperrors.PartNotFound,
		fmt.Sprintf("Part with ID '%d' not found", id))
}

func partExists(itemID int64, partID string) error {
	return apperrors.Wrap(ErrPartExists, http.StatusBadRequest, apperrors.PartAlreadyExists,
		fmt.Sprintf("Part with item_id %d and part_id %s already exists", itemID, partID))
}

func invalidPart(message string) error {
	return apperrors.Wrap(ErrInvalidPart, http.StatusBadRequest, apperrors.ValidationInvalidInput, message)
}

type PartService interface {
	UpsertParts(ctx context.Context, inputs []PartInput) ([]uint, error)
	CreatePart(ctx context.Context, input PartInput) (*model.Part, error)
	GetAllParts(ctx context.Context) ([]model.Part, error)
	GetPartByID(ctx context.Context, id uint) (*model.Part, error)
	UpdatePart(ctx context.Context, id uint, input PartInput) (*model.Part, error)
	BulkUpdateParts(ctx context.Context, ids []uint, input PartInput) (int64, error)
	DeletePart(ctx context.Context, id uint) error
	ReplacePartImage(ctx context.Context, id uint, image string) (*model.Part, error)
	FindOrphanParts(ctx context.Context) ([]model.Part, error)
}

type partService struct {
	partRepo  repository.PartRepository
	images    storage.ImageStore
	imageRoot string
}

func NewPartService(partRepo repository.PartRepository, images storage.ImageStore, imageRoot string) PartService {
	return &partService{
		partRepo:  partRepo,
		images:    images,
		imageRoot: imageRoot,
	}
}

// UpsertParts writes every input keyed by (item_id, part_id) and returns the
// stored ids in input order. All inputs are validated before the first write.
func (s *partService) UpsertParts(ctx context.Context, inputs []PartInput) ([]uint, error) {
	type pending struct {
		part    *model.Part
		columns []string
	}

	batch := make([]pending, 0, len(inputs))
	for i, in := range inputs {
		if _, _, _, ok := in.key(); !ok {
			return nil, invalidPart(fmt.Sprintf("Part at index %d: %s", i, partRequiredMessage))
		}
		cols, err := in.columns()
		if err != nil {
			return nil, invalidPart(fmt.Sprintf("Part at index %d: %s", i, err.Error()))
		}

		// weight, US and the BS/Standard flag are always rewritten, blank or not
		cols["weight"] = util.ParseWeight(in["weight"])
		cols["us"] = util.ParseUSPrice(in["US"])
		if _, ok := cols["bs_standard"]; !ok {
			cols["bs_standard"] = model.BsStandardBS
		}

		update := make([]string, 0, len(cols)+1)
		for column := range cols {
			if column != "item_id" && column != "part_id" {
				update = append(update, column)
			}
		}
		sort.Strings(update)
		update = append(update, "updated_at")

		batch = append(batch, pending{part: newPart(cols), columns: update})
	}

	ids := make([]uint, len(batch))
	for i, p := range batch {
		if err := s.partRepo.Upsert(ctx, p.part, p.columns); err != nil {
			logger.Error("Failed to upsert part", err, map[string]interface{}{
				"index":   i,
				"item_id": p.part.ItemID,
				"part_id": p.part.PartID,
			})
			return nil, err
		}
		ids[i] = p.part.ID
	}

	logger.Info("Parts upserted", map[string]interface{}{
		"count": len(ids),
	})
	return ids, nil
}

// CreatePart inserts a single part; an existing (item_id, part_id) is rejected
func (s *partService) CreatePart(ctx context.Context, input PartInput) (*model.Part, error) {
	itemID, partID, _, ok := input.key()
	if !ok {
		return nil, invalidPart(partRequiredMessage)
	}
	cols, err := input.columns()
	if err != nil {
		return nil, invalidPart(err.Error())
	}

	part := newPart(cols)
	if err := s.partRepo.Create(ctx, part); err != nil {
		if apperrors.IsUniqueViolation(err) {
			logger.Warn("Duplicate part rejected", map[string]interface{}{
				"item_id": itemID,
				"part_id": partID,
			})
			return nil, partExists(itemID, partID)
		}
		return nil, err
	}

	logger.Info("Part created", map[string]interface{}{
		"id":      part.ID,
		"item_id": part.ItemID,
		"part_id": part.PartID,
	})
	return part, nil
}

func (s *partService) GetAllParts(ctx context.Context) ([]model.Part, error) {
	parts, err := s.partRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch parts", err)
		return nil, err
	}
	return parts, nil
}

func (s *partService) GetPartByID(ctx context.Context, id uint) (*model.Part, error) {
	part, err := s.partRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, partNotFound(id)
		}
		return nil, err
	}
	return part, nil
}

// UpdatePart applies the recognised fields of input; unknown keys are ignored
func (s *partService) UpdatePart(ctx context.Context, id uint, input PartInput) (*model.Part, error) {
	cols, err := input.columns()
	if err != nil {
		return nil, invalidPart(err.Error())
	}
	if len(cols) == 0 {
		return nil, apperrors.Wrap(ErrNoUpdates, http.StatusBadRequest, apperrors.ValidationRequired, "No valid fields to update")
	}
	if name, ok := cols["name"]; ok && name == "" {
		return nil, invalidPart("'name' cannot be empty")
	}
	if partID, ok := cols["part_id"]; ok && partID == "" {
		return nil, invalidPart("'part_id' cannot be empty")
	}

	if err := s.partRepo.UpdateFields(ctx, id, cols); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, partNotFound(id)
		case apperrors.IsUniqueViolation(err):
			return nil, apperrors.Wrap(ErrPartExists, http.StatusBadRequest, apperrors.PartAlreadyExists,
				"Part with this item_id and part_id already exists")
		}
		return nil, err
	}

	logger.Info("Part updated", map[string]interface{}{
		"id":     id,
		"fields": len(cols),
	})
	return s.GetPartByID(ctx, id)
}

// BulkUpdateParts overwrites the same fields on every listed part and returns
// how many parts matched. Identity columns cannot be bulk edited.
func (s *partService) BulkUpdateParts(ctx context.Context, ids []uint, input PartInput) (int64, error) {
	if len(ids) == 0 {
		return 0, invalidPart("'ids' must be a non-empty array")
	}
	cols, err := input.columns()
	if err != nil {
		return 0, invalidPart(err.Error())
	}
	for _, identity := range []string{"item_id", "part_id"} {
		if _, ok := cols[identity]; ok {
			return 0, invalidPart(fmt.Sprintf("'%s' cannot be changed in a bulk update", identity))
		}
	}
	if len(cols) == 0 {
		return 0, apperrors.Wrap(ErrNoUpdates, http.StatusBadRequest, apperrors.ValidationRequired, "No valid fields to update")
	}
	if name, ok := cols["name"]; ok && name == "" {
		return 0, invalidPart("'name' cannot be empty")
	}

	matched, err := s.partRepo.BulkUpdateFields(ctx, ids, cols)
	if err != nil {
		return 0, err
	}

	logger.Info("Parts bulk updated", map[string]interface{}{
		"requested": len(ids),
		"matched":   matched,
		"fields":    len(cols),
	})
	return matched, nil
}

func (s *partService) DeletePart(ctx context.Context, id uint) error {
	if err := s.partRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return partNotFound(id)
		}
		return err
	}

	logger.Info("Part deleted", map[string]interface{}{
		"id": id,
	})
	return nil
}

func (s *partService) ReplacePartImage(ctx context.Context, id uint, image string) (*model.Part, error) {
	if strings.TrimSpace(image) == "" {
		return nil, apperrors.Wrap(ErrNoImage, http.StatusBadRequest, apperrors.ValidationRequired, "No image provided")
	}

	part, err := s.partRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(ErrPartNotFound, http.StatusNotFound, apperrors.PartNotFound, "Part not found")
		}
		return nil, err
	}

	uploaded, err := replaceImage(ctx, s.images, storage.JoinFolder(s.imageRoot, storage.PartFolder), part.PartImage, image, func(img *model.Image) error {
		return s.partRepo.UpdateFields(ctx, id, map[string]interface{}{
			"part_image_public_id": img.PublicID,
			"part_image_url":       img.URL,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Part image replaced", map[string]interface{}{
		"id":        id,
		"public_id": uploaded.PublicID,
	})
	return s.GetPartByID(ctx, id)
}

func (s *partService) FindOrphanParts(ctx context.Context) ([]model.Part, error) {
	return s.partRepo.FindOrphans(ctx)
}
