package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/lego-inventory-backend/internal/app/service"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/ikkim/lego-inventory-backend/internal/middleware"
)

const setRequiredMessage = "Invalid request: 'setName' and 'parts' array are required"

type LegoSetController struct {
	setService service.LegoSetService
}

func NewLegoSetController(setService service.LegoSetService) *LegoSetController {
	return &LegoSetController{
		setService: setService,
	}
}

type CreateOrUpdateSetRequest struct {
	SetName        string              `json:"setName"`
	Description    string              `json:"description"`
	SetDescription string              `json:"setDescription"`
	Parts          []service.PartInput `json:"parts"`
}

// GetAllSets returns every set with its parts
// GET /api/legoset
func (ctrl *LegoSetController) GetAllSets(c *gin.Context) {
	sets, err := ctrl.setService.GetAllSets(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    sets,
	})
}

// GetSetByID returns one set with its parts
// GET /api/legoset/:id
func (ctrl *LegoSetController) GetSetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	set, err := ctrl.setService.GetSetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    set,
	})
}

// CreateOrUpdateSet upserts the parts and creates the set or replaces its part list
// POST /api/legoset/new
func (ctrl *LegoSetController) CreateOrUpdateSet(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateOrUpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidBody(c, err, setRequiredMessage))
		return
	}

	description := req.Description
	if description == "" {
		description = req.SetDescription
	}

	set, err := ctrl.setService.CreateOrUpdateSet(c.Request.Context(), req.SetName, description, req.Parts)
	if err != nil {
		_ = c.Error(err)
		return
	}

	log.Info("Lego set saved", map[string]interface{}{
		"set_id": set.SetID,
		"parts":  len(set.Parts),
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": fmt.Sprintf("Lego set '%s' created/updated successfully", set.SetName),
		"data":    set,
	})
}

// ImportSet creates or updates a set from an uploaded parts workbook
// POST /api/legoset/import
func (ctrl *LegoSetController) ImportSet(c *gin.Context) {
	setName := c.PostForm("setName")
	description := c.PostForm("description")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(invalidBody(c, err, "A parts workbook is required in the 'file' field"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, http.StatusBadRequest, apperrors.ImportInvalidFile, "Unable to read uploaded file"))
		return
	}
	defer file.Close()

	set, err := ctrl.setService.ImportSetFromSpreadsheet(c.Request.Context(), setName, description, file)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": fmt.Sprintf("Lego set '%s' created/updated successfully", set.SetName),
		"data":    set,
	})
}

// UpdateSet patches scalar fields; unchanged values are reported as no change
// PUT /api/legoset/:id
func (ctrl *LegoSetController) UpdateSet(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req service.SetFieldsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidBody(c, err, "Invalid lego set data"))
		return
	}

	result, err := ctrl.setService.UpdateSetFields(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       result.Message,
		"changedFields": result.ChangedFields,
		"data":          result.Set,
	})
}

// RecalculateSet rewrites the derived columns of the set's parts
// PUT /api/legoset/:id/recalculate
func (ctrl *LegoSetController) RecalculateSet(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	set, err := ctrl.setService.RecalculateSetParts(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Lego set parts recalculated successfully",
		"data":    set,
	})
}

// DeleteSet removes the set; its parts are kept
// DELETE /api/legoset/:id
func (ctrl *LegoSetController) DeleteSet(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	set, err := ctrl.setService.DeleteSet(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Lego set '%s' deleted successfully", set.SetName),
	})
}

// UploadSetImage replaces the set's image
// PUT /api/legoset/:id/image
func (ctrl *LegoSetController) UploadSetImage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidBody(c, err, "No image provided"))
		return
	}

	set, err := ctrl.setService.ReplaceSetImage(c.Request.Context(), id, req.Image)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "LegoSet image updated successfully",
		"data":    set,
	})
}
