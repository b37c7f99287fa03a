package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/lego-inventory-backend/internal/app/repository"
	"github.com/ikkim/lego-inventory-backend/internal/app/service"
	"github.com/ikkim/lego-inventory-backend/internal/db"
	"github.com/ikkim/lego-inventory-backend/internal/middleware"
	"github.com/ikkim/lego-inventory-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	return router
}

func setupPartControllerTest(t *testing.T) (*gin.Engine, service.PartService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	images := storage.NewLocalImageStore(t.TempDir(), "http://localhost:5000/uploads")
	partService := service.NewPartService(repository.NewPartRepository(testDB), images, "")
	partController := NewPartController(partService)

	router := newTestEngine()
	router.GET("/api/parts", partController.GetAllParts)
	router.GET("/api/parts/orphans", partController.GetOrphanParts)
	router.PUT("/api/parts/bulk", partController.BulkUpdateParts)
	router.POST("/api/part/new", partController.CreatePart)
	router.GET("/api/part/:id", partController.GetPartByID)
	router.PUT("/api/part/:id", partController.UpdatePart)
	router.DELETE("/api/part/:id", partController.DeletePart)
	router.PUT("/api/part/:id/image", partController.UploadPartImage)

	return router, partService, testDB
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func TestPartController_CreatePart(t *testing.T) {
	router, _, _ := setupPartControllerTest(t)

	w, response := doJSON(t, router, http.MethodPost, "/api/part/new", map[string]interface{}{
		"item_id": 1, "part_id": "3001", "name": "Brick 2x4", "weight": "2.32g",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Part created successfully", response["message"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "3001", data["part_id"])
	assert.Equal(t, 2.32, data["weight"])

	w, response = doJSON(t, router, http.MethodPost, "/api/part/new", map[string]interface{}{
		"item_id": 1, "part_id": "3001", "name": "Brick 2x4",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, response["success"])
	assert.Equal(t, "Part with item_id 1 and part_id 3001 already exists", response["message"])

	w, response = doJSON(t, router, http.MethodPost, "/api/part/new", map[string]interface{}{"part_id": "3020"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "'item_id', 'part_id' and 'name' are required", response["message"])
}

func TestPartController_CreatePart_BodyTooLarge(t *testing.T) {
	_, partService, _ := setupPartControllerTest(t)

	router := newTestEngine()
	router.Use(middleware.BodyLimit(32))
	router.POST("/api/part/new", NewPartController(partService).CreatePart)

	w, response := doJSON(t, router, http.MethodPost, "/api/part/new", map[string]interface{}{
		"item_id": 1, "part_id": "3001", "name": "Brick 2x4 with a long description",
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body exceeds the 32 byte limit", response["message"])

	parts, err := partService.GetAllParts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestPartController_GetParts(t *testing.T) {
	router, partService, _ := setupPartControllerTest(t)

	ids, err := partService.UpsertParts(context.Background(), []service.PartInput{
		{"item_id": 1, "part_id": "3001", "name": "Brick"},
		{"item_id": 2, "part_id": "3020", "name": "Plate"},
	})
	require.NoError(t, err)

	w, response := doJSON(t, router, http.MethodGet, "/api/parts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"], 2)

	w, response = doJSON(t, router, http.MethodGet, "/api/part/"+itoa(ids[1]), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Plate", response["data"].(map[string]interface{})["name"])

	w, response = doJSON(t, router, http.MethodGet, "/api/part/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Part with ID '999' not found", response["message"])

	w, response = doJSON(t, router, http.MethodGet, "/api/part/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID: abc", response["message"])

	w, response = doJSON(t, router, http.MethodGet, "/api/parts/orphans", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), response["count"])
}

func TestPartController_UpdateAndDelete(t *testing.T) {
	router, partService, _ := setupPartControllerTest(t)

	part, err := partService.CreatePart(context.Background(), service.PartInput{"item_id": 1, "part_id": "3001", "name": "Brick"})
	require.NoError(t, err)
	path := "/api/part/" + itoa(part.ID)

	w, response := doJSON(t, router, http.MethodPut, path, map[string]interface{}{"US": "$0.50", "inventory": 3})
	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, 0.5, data["US"])
	assert.Equal(t, float64(3), data["inventory"])

	w, response = doJSON(t, router, http.MethodPut, path, map[string]interface{}{"bogus": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No valid fields to update", response["message"])

	w, response = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Part deleted successfully", response["message"])

	w, _ = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPartController_BulkUpdateParts(t *testing.T) {
	router, partService, _ := setupPartControllerTest(t)

	ids, err := partService.UpsertParts(context.Background(), []service.PartInput{
		{"item_id": 1, "part_id": "3001", "name": "Brick"},
		{"item_id": 2, "part_id": "3020", "name": "Plate"},
	})
	require.NoError(t, err)

	w, response := doJSON(t, router, http.MethodPut, "/api/parts/bulk", map[string]interface{}{
		"ids":     ids,
		"updates": map[string]interface{}{"ordered": 5},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), response["matchedCount"])
	assert.Equal(t, "2 parts updated successfully", response["message"])

	w, response = doJSON(t, router, http.MethodPut, "/api/parts/bulk", map[string]interface{}{
		"ids":     []uint{},
		"updates": map[string]interface{}{"ordered": 5},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "'ids' must be a non-empty array", response["message"])

	w, _ = doJSON(t, router, http.MethodPut, "/api/parts/bulk", `{"ids": "all"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPartController_UploadPartImage(t *testing.T) {
	router, partService, _ := setupPartControllerTest(t)

	part, err := partService.CreatePart(context.Background(), service.PartInput{"item_id": 1, "part_id": "3001", "name": "Brick"})
	require.NoError(t, err)
	path := "/api/part/" + itoa(part.ID) + "/image"

	w, response := doJSON(t, router, http.MethodPut, path, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No image provided", response["message"])

	w, response = doJSON(t, router, http.MethodPut, "/api/part/999/image", map[string]interface{}{"image": pngBase64})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Part not found", response["message"])

	w, response = doJSON(t, router, http.MethodPut, path, map[string]interface{}{"image": "data:image/png;base64," + pngBase64})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Part image updated successfully", response["message"])
	image := response["data"].(map[string]interface{})["partImage"].(map[string]interface{})
	assert.Contains(t, image["url"], "http://localhost:5000/uploads/Part/")
}
