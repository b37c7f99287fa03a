package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/internal/app/repository"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/ikkim/lego-inventory-backend/internal/sequence"
	"github.com/ikkim/lego-inventory-backend/internal/spreadsheet"
	"github.com/ikkim/lego-inventory-backend/internal/storage"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrSetNotFound  = errors.New("lego set not found")
	ErrSetNameTaken = errors.New("lego set name already taken")
	ErrInvalidSet   = errors.New("invalid lego set")
)

const (
	NoChangesMessage  = "No changes detected"
	SetUpdatedMessage = "Lego set updated successfully"
)

// SetFieldsUpdate is a sparse patch; nil fields are left alone
type SetFieldsUpdate struct {
	SetName        *string  `json:"setName"`
	SetDescription *string  `json:"setDescription"`
	NumberOfSets   *int     `json:"numberOfSets"`
	XValue         *float64 `json:"xValue"`
	YValue         *float64 `json:"yValue"`
}

type SetUpdateResult struct {
	Set           *model.LegoSet
	ChangedFields []string
	Message       string
}

func setNotFound(id uint) error {
	return apperrors.Wrap(ErrSetNotFound, http.StatusNotFound, apperrors.SetNotFound,
		fmt.Sprintf("Lego set with ID '%d' not found", id))
}

func invalidSet(message string) error {
	return apperrors.Wrap(ErrInvalidSet, http.StatusBadRequest, apperrors.ValidationInvalidInput, message)
}

type LegoSetService interface {
	CreateOrUpdateSet(ctx context.Context, name, description string, parts []PartInput) (*model.LegoSet, error)
	UpdateSetFields(ctx context.Context, id uint, update SetFieldsUpdate) (*SetUpdateResult, error)
	RecalculateSetParts(ctx context.Context, id uint) (*model.LegoSet, error)
	ImportSetFromSpreadsheet(ctx context.Context, name, description string, r io.Reader) (*model.LegoSet, error)
	GetAllSets(ctx context.Context) ([]model.LegoSet, error)
	GetSetByID(ctx context.Context, id uint) (*model.LegoSet, error)
	DeleteSet(ctx context.Context, id uint) (*model.LegoSet, error)
	ReplaceSetImage(ctx context.Context, id uint, image string) (*model.LegoSet, error)
}

type legoSetService struct {
	setRepo     repository.LegoSetRepository
	partRepo    repository.PartRepository
	partService PartService
	codes       sequence.Generator
	images      storage.ImageStore
	imageRoot   string
}

func NewLegoSetService(
	setRepo repository.LegoSetRepository,
	partRepo repository.PartRepository,
	partService PartService,
	codes sequence.Generator,
	images storage.ImageStore,
	imageRoot string,
) LegoSetService {
	return &legoSetService{
		setRepo:     setRepo,
		partRepo:    partRepo,
		partService: partService,
		codes:       codes,
		images:      images,
		imageRoot:   imageRoot,
	}
}

// CreateOrUpdateSet upserts the parts, then creates the set under the next
// SET-NNNN code or, when the name exists, replaces its part list wholesale.
// The description of an existing set only changes when a new one is given.
func (s *legoSetService) CreateOrUpdateSet(ctx context.Context, name, description string, parts []PartInput) (*model.LegoSet, error) {
	name = strings.TrimSpace(name)
	if name == "" || parts == nil {
		return nil, invalidSet("Invalid request: 'setName' and 'parts' array are required")
	}

	partIDs, err := s.partService.UpsertParts(ctx, parts)
	if err != nil {
		return nil, err
	}

	existing, err := s.setRepo.FindByName(ctx, name)
	switch {
	case err == nil:
		return s.replaceSetParts(ctx, existing, description, partIDs)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	// drawn outside the insert so a failed insert only leaves a gap in the codes
	n, err := s.codes.Next(ctx)
	if err != nil {
		logger.Error("Failed to draw set code", err)
		return nil, err
	}

	set := &model.LegoSet{
		SetID:          model.FormatSetCode(n),
		SetName:        name,
		SetDescription: description,
		NumberOfSets:   1,
		XValue:         1,
		YValue:         1,
	}
	if err := s.setRepo.Create(ctx, set, partIDs); err != nil {
		if !apperrors.IsUniqueViolation(err) {
			return nil, err
		}
		// a concurrent request created the same name first
		existing, findErr := s.setRepo.FindByName(ctx, name)
		if findErr != nil {
			return nil, err
		}
		return s.replaceSetParts(ctx, existing, description, partIDs)
	}

	logger.Info("Lego set created", map[string]interface{}{
		"id":       set.ID,
		"set_id":   set.SetID,
		"set_name": set.SetName,
		"parts":    len(partIDs),
	})
	return s.setRepo.FindByID(ctx, set.ID)
}

func (s *legoSetService) replaceSetParts(ctx context.Context, set *model.LegoSet, description string, partIDs []uint) (*model.LegoSet, error) {
	fields := map[string]interface{}{}
	if description != "" {
		fields["set_description"] = description
	}
	if err := s.setRepo.ReplaceParts(ctx, set.ID, partIDs, fields); err != nil {
		return nil, err
	}

	logger.Info("Lego set parts replaced", map[string]interface{}{
		"id":       set.ID,
		"set_id":   set.SetID,
		"set_name": set.SetName,
		"parts":    len(partIDs),
	})
	return s.setRepo.FindByID(ctx, set.ID)
}

// UpdateSetFields applies only the fields that are present and differ from the
// stored set. A patch that changes nothing succeeds with no changed fields.
func (s *legoSetService) UpdateSetFields(ctx context.Context, id uint, update SetFieldsUpdate) (*SetUpdateResult, error) {
	set, err := s.GetSetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	changed := []string{}

	if update.SetName != nil {
		name := strings.TrimSpace(*update.SetName)
		if name == "" {
			return nil, invalidSet("'setName' cannot be empty")
		}
		if name != set.SetName {
			fields["set_name"] = name
			changed = append(changed, "setName")
		}
	}
	if update.SetDescription != nil && *update.SetDescription != set.SetDescription {
		fields["set_description"] = *update.SetDescription
		changed = append(changed, "setDescription")
	}
	if update.NumberOfSets != nil {
		if *update.NumberOfSets < 0 {
			return nil, invalidSet("'numberOfSets' cannot be negative")
		}
		if *update.NumberOfSets != set.NumberOfSets {
			fields["number_of_sets"] = *update.NumberOfSets
			changed = append(changed, "numberOfSets")
		}
	}
	if update.XValue != nil {
		if *update.XValue < 0 {
			return nil, invalidSet("'xValue' cannot be negative")
		}
		if *update.XValue != set.XValue {
			fields["x_value"] = *update.XValue
			changed = append(changed, "xValue")
		}
	}
	if update.YValue != nil {
		if *update.YValue < 0 {
			return nil, invalidSet("'yValue' cannot be negative")
		}
		if *update.YValue != set.YValue {
			fields["y_value"] = *update.YValue
			changed = append(changed, "yValue")
		}
	}

	if len(changed) == 0 {
		return &SetUpdateResult{Set: set, ChangedFields: changed, Message: NoChangesMessage}, nil
	}

	if err := s.setRepo.UpdateFields(ctx, id, fields); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(ErrSetNameTaken, http.StatusBadRequest, apperrors.SetNameExists,
				fmt.Sprintf("Lego set with name '%v' already exists", fields["set_name"]))
		}
		return nil, err
	}

	logger.Info("Lego set fields updated", map[string]interface{}{
		"id":      id,
		"changed": changed,
	})

	updated, err := s.setRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SetUpdateResult{Set: updated, ChangedFields: changed, Message: SetUpdatedMessage}, nil
}

// multiplier treats an unset (zero) multiplier as 1
func multiplier(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// RecalculateSetParts rewrites the derived columns of every part in the set:
// qSet = quantity x numberOfSets, pabPrice_x = PaB x xValue, costPrice_y = cost x yValue.
// Parts are shared, so the last recalculated set wins.
func (s *legoSetService) RecalculateSetParts(ctx context.Context, id uint) (*model.LegoSet, error) {
	set, err := s.GetSetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sets := set.NumberOfSets
	if sets == 0 {
		sets = 1
	}

	seen := make(map[uint]bool, len(set.Parts))
	for _, part := range set.Parts {
		if seen[part.ID] {
			continue
		}
		seen[part.ID] = true

		fields := map[string]interface{}{
			"q_set":        part.Quantity * sets,
			"pab_price_x":  part.PaB * multiplier(set.XValue),
			"cost_price_y": part.Cost * multiplier(set.YValue),
		}
		if err := s.partRepo.UpdateFields(ctx, part.ID, fields); err != nil {
			return nil, err
		}
	}

	logger.Info("Lego set parts recalculated", map[string]interface{}{
		"id":    id,
		"parts": len(seen),
	})
	return s.setRepo.FindByID(ctx, id)
}

// ImportSetFromSpreadsheet reads a parts workbook and feeds it to CreateOrUpdateSet
func (s *legoSetService) ImportSetFromSpreadsheet(ctx context.Context, name, description string, r io.Reader) (*model.LegoSet, error) {
	rows, err := spreadsheet.ReadParts(r)
	if err != nil {
		logger.Warn("Unreadable parts workbook", map[string]interface{}{
			"set_name": name,
			"error":    err.Error(),
		})
		return nil, apperrors.Wrap(err, http.StatusBadRequest, apperrors.ImportInvalidFile, "Invalid parts file: "+err.Error())
	}

	parts := make([]PartInput, len(rows))
	for i, row := range rows {
		parts[i] = partInputFromRow(row)
	}
	return s.CreateOrUpdateSet(ctx, name, description, parts)
}

// partInputFromRow leaves blank cells out so insert defaults apply
func partInputFromRow(row spreadsheet.PartRow) PartInput {
	in := PartInput{
		"item_id":          row.ItemID,
		"part_id":          row.PartID,
		"name":             row.Name,
		"item_description": row.ItemDescription,
		"color":            row.Color,
		"weight":           row.Weight,
		"US":               row.US,
		"bsStandard":       row.BsStandard,
	}
	optional := map[string]string{
		"PaB":       row.PaB,
		"quantity":  row.Quantity,
		"ordered":   row.Ordered,
		"inventory": row.Inventory,
	}
	for key, value := range optional {
		if value != "" {
			in[key] = value
		}
	}
	return in
}

func (s *legoSetService) GetAllSets(ctx context.Context) ([]model.LegoSet, error) {
	return s.setRepo.FindAll(ctx)
}

func (s *legoSetService) GetSetByID(ctx context.Context, id uint) (*model.LegoSet, error) {
	set, err := s.setRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, setNotFound(id)
		}
		return nil, err
	}
	return set, nil
}

// DeleteSet removes the set and returns it as it was. Its parts are kept.
func (s *legoSetService) DeleteSet(ctx context.Context, id uint) (*model.LegoSet, error) {
	set, err := s.GetSetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.setRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, setNotFound(id)
		}
		return nil, err
	}

	logger.Info("Lego set deleted", map[string]interface{}{
		"id":       id,
		"set_name": set.SetName,
	})
	return set, nil
}

func (s *legoSetService) ReplaceSetImage(ctx context.Context, id uint, image string) (*model.LegoSet, error) {
	if strings.TrimSpace(image) == "" {
		return nil, apperrors.Wrap(ErrNoImage, http.StatusBadRequest, apperrors.ValidationRequired, "No image provided")
	}

	set, err := s.setRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(ErrSetNotFound, http.StatusNotFound, apperrors.SetNotFound, "Legoset not found")
		}
		return nil, err
	}

	uploaded, err := replaceImage(ctx, s.images, storage.JoinFolder(s.imageRoot, storage.LegoSetFolder), set.SetImage, image, func(img *model.Image) error {
		return s.setRepo.UpdateFields(ctx, id, map[string]interface{}{
			"set_image_public_id": img.PublicID,
			"set_image_url":       img.URL,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Lego set image replaced", map[string]interface{}{
		"id":        id,
		"public_id": uploaded.PublicID,
	})
	return s.setRepo.FindByID(ctx, id)
}
