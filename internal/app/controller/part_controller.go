package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/lego-inventory-backend/internal/app/service"
	"github.com/ikkim/lego-inventory-backend/internal/middleware"
)

type PartController struct {
	partService service.PartService
}

func NewPartController(partService service.PartService) *PartController {
	return &PartController{
		partService: partService,
	}
}

// BulkUpdateRequest overwrites the same fields on every listed part
type BulkUpdateRequest struct {
	IDs     []uint            `json:"ids"`
	Updates service.PartInput `json:"updates"`
}

// GetAllParts returns every part
// GET /api/parts
func (ctrl *PartController) GetAllParts(c *gin.Context) {
	parts, err := ctrl.partService.GetAllParts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    parts,
	})
}

// GetPartByID returns a part by ID
// GET /api/part/:id
func (ctrl *PartController) GetPartByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	part, err := ctrl.partService.GetPartByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    part,
	})
}

// CreatePart inserts a single part, rejecting an existing (item_id, part_id)
// POST /api/part/new
func (ctrl *PartController) CreatePart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.PartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(invalidBody(c, err, "Invalid part data"))
		return
	}

	part, err := ctrl.partService.CreatePart(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	log.Info("Part created successfully", map[string]interface{}{
		"part_id": part.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Part created successfully",
		"data":    part,
	})
}

// UpdatePart applies a field-level patch
// PUT /api/part/:id
func (ctrl *PartController) UpdatePart(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var input service.PartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(invalidBody(c, err, "Invalid part data"))
		return
	}

	part, err := ctrl.partService.UpdatePart(c.Request.Context(), id, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    part,
	})
}

// BulkUpdateParts overwrites fields on a list of parts
// PUT /api/parts/bulk
func (ctrl *PartController) BulkUpdateParts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidBody(c, err, "Invalid request: expected 'ids' array and 'updates' object"))
		return
	}

	matched, err := ctrl.partService.BulkUpdateParts(c.Request.Context(), req.IDs, req.Updates)
	if err != nil {
		_ = c.Error(err)
		return
	}

	log.Info("Parts bulk updated successfully", map[string]interface{}{
		"requested": len(req.IDs),
		"matched":   matched,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("%d parts updated successfully", matched),
		"matchedCount": matched,
	})
}

// DeletePart removes a part and its set memberships
// DELETE /api/part/:id
func (ctrl *PartController) DeletePart(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := ctrl.partService.DeletePart(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Part deleted successfully",
	})
}

// UploadPartImage replaces the part's image
// PUT /api/part/:id/image
func (ctrl *PartController) UploadPartImage(c *gin.Context) {
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

	part, err := ctrl.partService.ReplacePartImage(c.Request.Context(), id, req.Image)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Part image updated successfully",
		"data":    part,
	})
}

// GetOrphanParts lists parts that no set references
// GET /api/parts/orphans
func (ctrl *PartController) GetOrphanParts(c *gin.Context) {
	parts, err := ctrl.partService.FindOrphanParts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(parts),
		"data":    parts,
	})
}
