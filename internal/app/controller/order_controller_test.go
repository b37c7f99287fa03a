package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/lego-inventory-backend/internal/app/repository"
	"github.com/ikkim/lego-inventory-backend/internal/app/service"
	"github.com/ikkim/lego-inventory-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupOrderControllerTest(t *testing.T) *gin.Engine {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderController := NewOrderController(service.NewOrderService(repository.NewOrderRepository(testDB)))

	router := newTestEngine()
	router.GET("/api/orders", orderController.GetAllOrders)
	router.POST("/api/orders/new", orderController.CreateOrders)
	router.POST("/api/orders/import", orderController.ImportOrders)
	router.GET("/api/orders/:id", orderController.GetOrderByID)
	router.PUT("/api/orders/:id", orderController.UpdateOrder)
	router.DELETE("/api/orders/:id", orderController.DeleteOrder)
	return router
}

func orderPayload(orderID int, descriptions ...string) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(descriptions))
	for _, d := range descriptions {
		items = append(items, map[string]interface{}{"itemDescription": d, "condition": "N", "qty": "2", "each": "$0.10"})
	}
	return map[string]interface{}{
		"orderData": map[string]interface{}{
			"orderId":      orderID,
			"orderDate":    "2024-03-01",
			"seller":       "brickshop",
			"baseCurrency": "USD",
			"orderTotal":   map[string]interface{}{"amount": 12.5, "currency": "USD"},
		},
		"items": items,
	}
}

func TestOrderController_CreateOrders(t *testing.T) {
	router := setupOrderControllerTest(t)

	w, response := doJSON(t, router, http.MethodPost, "/api/orders/new", []interface{}{
		orderPayload(100, "Brick"),
		orderPayload(101, "Plate", "Tile"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Orders processed successfully", response["message"])
	assert.Equal(t, float64(2), response["createdCount"])
	assert.Equal(t, float64(0), response["skippedCount"])
	orders := response["orders"].([]interface{})
	require.Len(t, orders, 2)
	first := orders[0].(map[string]interface{})
	assert.Equal(t, float64(100), first["orderData"].(map[string]interface{})["orderId"])
	assert.Equal(t, 0.1, first["items"].([]interface{})[0].(map[string]interface{})["each"])

	w, response = doJSON(t, router, http.MethodPost, "/api/orders/new", []interface{}{
		orderPayload(100, "Brick"),
		orderPayload(102),
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), response["createdCount"])
	assert.Equal(t, []interface{}{float64(100)}, response["skippedOrders"])
}

func TestOrderController_CreateOrders_InvalidBody(t *testing.T) {
	router := setupOrderControllerTest(t)

	w, response := doJSON(t, router, http.MethodPost, "/api/orders/new", `{"orderData": {}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body, expected array of orders", response["message"])

	w, response = doJSON(t, router, http.MethodPost, "/api/orders/new", `null`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body, expected array of orders", response["message"])

	w, response = doJSON(t, router, http.MethodPost, "/api/orders/new", `[{"items": []}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "orderData is required for each order", response["message"])

	w, response = doJSON(t, router, http.MethodPost, "/api/orders/new", []interface{}{
		orderPayload(200, "Brick"),
		map[string]interface{}{"orderData": map[string]interface{}{"orderId": 201}, "items": []interface{}{}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Order at index 1: 'orderDate' is required", response["message"])

	w, response = doJSON(t, router, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, response["orders"])
}

func TestOrderController_GetUpdateDelete(t *testing.T) {
	router := setupOrderControllerTest(t)

	_, created := doJSON(t, router, http.MethodPost, "/api/orders/new", []interface{}{
		orderPayload(300, "Brick"),
		orderPayload(301, "Plate"),
	})
	orders := created["orders"].([]interface{})
	path := "/api/orders/" + itoa(uint(orders[0].(map[string]interface{})["id"].(float64)))

	w, response := doJSON(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "brickshop", response["order"].(map[string]interface{})["orderData"].(map[string]interface{})["seller"])

	w, response = doJSON(t, router, http.MethodGet, "/api/orders/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", response["message"])

	w, response = doJSON(t, router, http.MethodPut, path, map[string]interface{}{
		"orderData": map[string]interface{}{"orderStatus": "Shipped"},
		"items":     []interface{}{map[string]interface{}{"itemDescription": "Tile", "qty": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Order updated successfully", response["message"])
	order := response["order"].(map[string]interface{})
	details := order["orderData"].(map[string]interface{})
	assert.Equal(t, "Shipped", details["orderStatus"])
	assert.Equal(t, "brickshop", details["seller"])
	require.Len(t, order["items"], 1)
	assert.Equal(t, "Tile", order["items"].([]interface{})[0].(map[string]interface{})["itemDescription"])

	w, response = doJSON(t, router, http.MethodPut, path, map[string]interface{}{
		"orderData": map[string]interface{}{"orderId": 301},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Duplicate orderId: 301", response["message"])

	w, response = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Order deleted successfully", response["message"])

	w, _ = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_ImportOrders(t *testing.T) {
	router := setupOrderControllerTest(t)

	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Order ID", "Order Date", "Seller", "Order Total", "Item Description", "Condition", "Qty", "Each"},
		{701, 45352, "brickshop", "$3.00", "Brick", "N", 6, "$0.50"},
		{702, 45353, "brickshop", "$1.00", "Plate", "U", 4, "$0.25"},
	}
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &r))
	}
	workbook, err := f.WriteToBuffer()
	require.NoError(t, err)

	upload := func(content []byte) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		form := multipart.NewWriter(body)
		part, err := form.CreateFormFile("file", "orders.xlsx")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/orders/import", body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	content := workbook.Bytes()
	w := upload(content)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["createdCount"])

	w = upload(content)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(0), response["createdCount"])
	assert.Equal(t, float64(2), response["skippedCount"])

	w = upload([]byte("not a workbook"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["message"], "Invalid order file")
}
