package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/internal/app/repository"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/ikkim/lego-inventory-backend/internal/spreadsheet"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"github.com/ikkim/lego-inventory-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrDuplicateOrder = errors.New("duplicate order id")
)

// Fields is a loosely typed JSON object as posted by the dashboard
type Fields map[string]interface{}

// OrderInput is one {orderData, items} tuple of a batch import
type OrderInput struct {
	OrderData Fields   `json:"orderData"`
	Items     []Fields `json:"items"`
}

// OrderPatch updates an order. A nil OrderData leaves the details alone and
// a nil Items keeps the current items; a non-nil Items replaces them all.
type OrderPatch struct {
	OrderData Fields   `json:"orderData"`
	Items     []Fields `json:"items"`
}

type ImportResult struct {
	CreatedCount  int           `json:"createdCount"`
	SkippedCount  int           `json:"skippedCount"`
	SkippedOrders []int64       `json:"skippedOrders"`
	Orders        []model.Order `json:"orders"`
}

func invalidOrder(message string) error {
	return apperrors.Wrap(ErrInvalidOrder, http.StatusBadRequest, apperrors.ValidationInvalidInput, message)
}

func orderNotFound() error {
	return apperrors.Wrap(ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound, "Order not found")
}

// ParseOrderInputs checks the shape of a decoded request body: every element
// needs an orderData object and an items array.
func ParseOrderInputs(raw []map[string]interface{}) ([]OrderInput, error) {
	inputs := make([]OrderInput, len(raw))
	for i, obj := range raw {
		data, ok := obj["orderData"].(map[string]interface{})
		if !ok {
			return nil, invalidOrder("orderData is required for each order")
		}
		list, ok := obj["items"].([]interface{})
		if !ok {
			return nil, invalidOrder("items array is required for each order")
		}

		items := make([]Fields, len(list))
		for j, item := range list {
			fields, ok := item.(map[string]interface{})
			if !ok {
				return nil, invalidOrder(fmt.Sprintf("Order at index %d: item %d must be an object", i, j))
			}
			items[j] = fields
		}
		inputs[i] = OrderInput{OrderData: data, Items: items}
	}
	return inputs, nil
}

// moneyOf accepts a bare amount or an {amount, currency} object.
// A bare amount takes the order's base currency.
func moneyOf(v interface{}, currency string) model.Money {
	if obj, ok := v.(map[string]interface{}); ok {
		m := model.Money{
			Amount:   util.CleanCurrency(obj["amount"]),
			Currency: util.ToString(obj["currency"]),
		}
		if m.Currency == "" {
			m.Currency = currency
		}
		return m
	}
	return model.Money{Amount: util.CleanCurrency(v), Currency: currency}
}

// applyDetails copies every present key of f onto d. Payment may be given as
// a nested object or as the flat pmtIn/pmtMethod columns of an export.
func applyDetails(d *model.OrderDetails, f Fields) error {
	if v, ok := f["orderId"]; ok {
		id, ok := util.ToInt64(v)
		if !ok {
			return fmt.Errorf("invalid value for 'orderId'")
		}
		d.OrderID = id
	}
	if v, ok := f["orderDate"]; ok {
		t, err := util.ParseDate(v)
		if err != nil {
			return fmt.Errorf("invalid value for 'orderDate'")
		}
		if t != nil {
			d.OrderDate = *t
		}
	}
	if v, ok := f["orderStatusChanged"]; ok {
		t, err := util.ParseDate(v)
		if err != nil {
			return fmt.Errorf("invalid value for 'orderStatusChanged'")
		}
		d.OrderStatusChanged = t
	}

	text := map[string]*string{
		"seller":       &d.Seller,
		"baseCurrency": &d.BaseCurrency,
		"orderStatus":  &d.OrderStatus,
		"orderNote":    &d.OrderNote,
		"trackingNo":   &d.TrackingNo,
		"location":     &d.Location,
		"pmtIn":        &d.Payment.PmtIn,
		"pmtMethod":    &d.Payment.PmtMethod,
	}
	for key, dst := range text {
		if v, ok := f[key]; ok {
			*dst = util.ToString(v)
		}
	}
	if payment, ok := f["payment"].(map[string]interface{}); ok {
		if v, ok := payment["pmtIn"]; ok {
			d.Payment.PmtIn = util.ToString(v)
		}
		if v, ok := payment["pmtMethod"]; ok {
			d.Payment.PmtMethod = util.ToString(v)
		}
	}

	amounts := map[string]*float64{
		"shipping":     &d.Shipping,
		"insurance":    &d.Insurance,
		"addChrg1":     &d.AddChrg1,
		"addChrg2":     &d.AddChrg2,
		"credit":       &d.Credit,
		"couponCredit": &d.CouponCredit,
	}
	for key, dst := range amounts {
		if v, ok := f[key]; ok {
			*dst = util.CleanCurrency(v)
		}
	}

	totals := map[string]*model.Money{
		"orderTotal":     &d.OrderTotal,
		"tax":            &d.Tax,
		"baseGrandTotal": &d.BaseGrandTotal,
	}
	for key, dst := range totals {
		if v, ok := f[key]; ok {
			*dst = moneyOf(v, d.BaseCurrency)
		}
	}

	if v, ok := f["totalLots"]; ok {
		d.TotalLots = util.CleanQuantity(v)
	}
	if v, ok := f["totalItems"]; ok {
		d.TotalItems = util.CleanQuantity(v)
	}
	return nil
}

// detailsFrom builds new order details; orderId and orderDate are required
func detailsFrom(f Fields) (*model.OrderDetails, error) {
	if _, ok := util.ToInt64(f["orderId"]); !ok {
		return nil, fmt.Errorf("'orderId' is required")
	}

	d := &model.OrderDetails{}
	if err := applyDetails(d, f); err != nil {
		return nil, err
	}
	if d.OrderDate.IsZero() {
		return nil, fmt.Errorf("'orderDate' is required")
	}
	return d, nil
}

func itemFrom(f Fields) (model.OrderItem, error) {
	item := model.OrderItem{
		Condition:       model.NormalizeCondition(util.ToString(f["condition"])),
		ItemDescription: util.ToString(f["itemDescription"]),
		Qty:             util.CleanQuantity(f["qty"]),
		Each:            util.CleanCurrency(f["each"]),
		Total:           util.CleanCurrency(f["total"]),
		ItemType:        util.ToString(f["itemType"]),
		ItemNumber:      util.ToString(f["itemNumber"]),
		Weight:          util.ToFloat(f["weight"]),
		InvID:           util.ToString(f["invId"]),
		SubCondition:    util.ToString(f["subCondition"]),
	}
	if batch, ok := util.ToInt64(f["batch"]); ok {
		item.Batch = batch
	}
	batchDate, err := util.ParseDate(f["batchDate"])
	if err != nil {
		return item, fmt.Errorf("invalid value for 'batchDate'")
	}
	item.BatchDate = batchDate
	return item, nil
}

// itemsFrom builds a fresh item slice so no two orders share item values
func itemsFrom(list []Fields) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(list))
	for j, f := range list {
		item, err := itemFrom(f)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", j, err)
		}
		items = append(items, item)
	}
	return items, nil
}

type OrderService interface {
	ImportOrders(ctx context.Context, inputs []OrderInput) (*ImportResult, error)
	ImportOrdersFromSpreadsheet(ctx context.Context, r io.Reader) (*ImportResult, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	GetOrderByID(ctx context.Context, id uint) (*model.Order, error)
	UpdateOrder(ctx context.Context, id uint, patch OrderPatch) (*model.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
}

type orderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// ImportOrders creates every order whose orderId is not yet stored and skips
// the rest. The batch is validated up front; each order is written on its own.
func (s *orderService) ImportOrders(ctx context.Context, inputs []OrderInput) (*ImportResult, error) {
	type pending struct {
		details *model.OrderDetails
		items   []model.OrderItem
	}

	batch := make([]pending, 0, len(inputs))
	for i, in := range inputs {
		if in.OrderData == nil {
			return nil, invalidOrder("orderData is required for each order")
		}
		if in.Items == nil {
			return nil, invalidOrder("items array is required for each order")
		}
		details, err := detailsFrom(in.OrderData)
		if err != nil {
			return nil, invalidOrder(fmt.Sprintf("Order at index %d: %s", i, err.Error()))
		}
		items, err := itemsFrom(in.Items)
		if err != nil {
			return nil, invalidOrder(fmt.Sprintf("Order at index %d: %s", i, err.Error()))
		}
		batch = append(batch, pending{details: details, items: items})
	}

	result := &ImportResult{
		SkippedOrders: []int64{},
		Orders:        []model.Order{},
	}

	for _, p := range batch {
		orderID := p.details.OrderID

		exists, err := s.orderRepo.ExistsByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if exists {
			result.SkippedOrders = append(result.SkippedOrders, orderID)
			continue
		}

		order, err := s.orderRepo.Create(ctx, p.details, p.items)
		if err != nil {
			// lost a race with another import of the same order
			if apperrors.IsUniqueViolation(err) {
				result.SkippedOrders = append(result.SkippedOrders, orderID)
				continue
			}
			return nil, err
		}
		result.Orders = append(result.Orders, *order)
	}

	result.CreatedCount = len(result.Orders)
	result.SkippedCount = len(result.SkippedOrders)

	logger.Info("Orders imported", map[string]interface{}{
		"received": len(inputs),
		"created":  result.CreatedCount,
		"skipped":  result.SkippedCount,
	})
	return result, nil
}

// ImportOrdersFromSpreadsheet groups the rows of an order export and imports them
func (s *orderService) ImportOrdersFromSpreadsheet(ctx context.Context, r io.Reader) (*ImportResult, error) {
	records, err := spreadsheet.ReadOrders(r)
	if err != nil {
		logger.Warn("Unreadable order workbook", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, apperrors.Wrap(err, http.StatusBadRequest, apperrors.ImportInvalidFile, "Invalid order file: "+err.Error())
	}

	inputs := make([]OrderInput, len(records))
	for i, rec := range records {
		inputs[i] = orderInputFromRecord(rec)
	}
	return s.ImportOrders(ctx, inputs)
}

func orderInputFromRecord(rec spreadsheet.OrderRecord) OrderInput {
	h := rec.Header
	data := Fields{
		"orderId":        h.OrderID,
		"orderDate":      h.OrderDate,
		"seller":         h.Seller,
		"baseCurrency":   h.BaseCurrency,
		"shipping":       h.Shipping,
		"insurance":      h.Insurance,
		"addChrg1":       h.AddChrg1,
		"addChrg2":       h.AddChrg2,
		"credit":         h.Credit,
		"couponCredit":   h.CouponCredit,
		"orderTotal":     h.OrderTotal,
		"tax":            h.Tax,
		"baseGrandTotal": h.BaseGrandTotal,
		"totalLots":      h.TotalLots,
		"totalItems":     h.TotalItems,
		"orderStatus":    h.OrderStatus,
		"pmtIn":          h.PmtIn,
		"pmtMethod":      h.PmtMethod,
		"orderNote":      h.OrderNote,
		"trackingNo":     h.TrackingNo,
		"location":       h.Location,
	}
	if h.OrderStatusChanged != "" {
		data["orderStatusChanged"] = h.OrderStatusChanged
	}

	items := make([]Fields, len(rec.Items))
	for i, line := range rec.Items {
		items[i] = Fields{
			"batch":           line.Batch,
			"batchDate":       line.BatchDate,
			"condition":       line.Condition,
			"itemDescription": line.ItemDescription,
			"qty":             line.Qty,
			"each":            line.Each,
			"total":           line.Total,
			"itemType":        line.ItemType,
			"itemNumber":      line.ItemNumber,
			"weight":          line.Weight,
			"invId":           line.InvID,
			"subCondition":    line.SubCondition,
		}
	}
	return OrderInput{OrderData: data, Items: items}
}

func (s *orderService) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch orders", err)
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound()
		}
		return nil, err
	}
	return order, nil
}

// UpdateOrder merges orderData into the stored details and replaces the items
// when a list is given
func (s *orderService) UpdateOrder(ctx context.Context, id uint, patch OrderPatch) (*model.Order, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.OrderData != nil {
		if err := applyDetails(&order.OrderDetails, patch.OrderData); err != nil {
			return nil, invalidOrder(err.Error())
		}
	}

	replaceItems := patch.Items != nil
	if replaceItems {
		items, err := itemsFrom(patch.Items)
		if err != nil {
			return nil, invalidOrder(err.Error())
		}
		order.Items = items
	}

	if err := s.orderRepo.Update(ctx, order, replaceItems); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(ErrDuplicateOrder, http.StatusBadRequest, apperrors.OrderIDExists,
				fmt.Sprintf("Duplicate orderId: %d", order.OrderDetails.OrderID))
		}
		return nil, err
	}

	logger.Info("Order updated", map[string]interface{}{
		"id":            id,
		"order_id":      order.OrderDetails.OrderID,
		"replace_items": replaceItems,
	})
	return s.GetOrderByID(ctx, id)
}

func (s *orderService) DeleteOrder(ctx context.Context, id uint) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orderNotFound()
		}
		return err
	}

	logger.Info("Order deleted", map[string]interface{}{
		"id": id,
	})
	return nil
}
