package spreadsheet

import (
	"io"

	"github.com/ikkim/lego-inventory-backend/pkg/util"
	"github.com/pkg/errors"
)

// OrderIDColumn marks the first row of every order in an export
const OrderIDColumn = "Order ID"

type OrderHeader struct {
	OrderID            string
	OrderDate          string
	Seller             string
	BaseCurrency       string
	Shipping           float64
	Insurance          float64
	AddChrg1           float64
	AddChrg2           float64
	Credit             float64
	CouponCredit       float64
	OrderTotal         float64
	Tax                float64
	BaseGrandTotal     float64
	TotalLots          int
	TotalItems         int
	OrderStatus        string
	OrderStatusChanged string
	PmtIn              string
	PmtMethod          string
	OrderNote          string
	TrackingNo         string
	Location           string
}

type OrderLine struct {
	Batch           string
	BatchDate       string
	Condition       string
	ItemDescription string
	Qty             int
	Each            float64
	Total           float64
	ItemType        string
	ItemNumber      string
	Weight          float64
	InvID           string
	SubCondition    string
}

// OrderRecord is one order of an export: its header row plus the item rows below it
type OrderRecord struct {
	Header OrderHeader
	Items  []OrderLine
}

// ReadOrders parses the first sheet of an order export workbook
func ReadOrders(r io.Reader) ([]OrderRecord, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	return ParseOrderRows(rows)
}

// ParseOrderRows groups rows into orders. A row with an Order ID opens a new
// order and may carry its first item; following rows with an Item Description
// are items of the open order. Item rows before the first order are dropped.
func ParseOrderRows(rows [][]string) ([]OrderRecord, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	h := newHeader(rows[0])
	if !h.has(OrderIDColumn) {
		return nil, errors.Errorf("missing %q column", OrderIDColumn)
	}

	records := []OrderRecord{}
	var current *OrderRecord

	for _, row := range rows[1:] {
		if h.cell(row, OrderIDColumn) != "" {
			if current != nil {
				records = append(records, *current)
			}
			current = &OrderRecord{Header: parseOrderHeader(h, row), Items: []OrderLine{}}
			if h.cell(row, "Item Description") != "" {
				current.Items = append(current.Items, parseOrderLine(h, row))
			}
			continue
		}

		if current != nil && h.cell(row, "Item Description") != "" {
			current.Items = append(current.Items, parseOrderLine(h, row))
		}
	}

	if current != nil {
		records = append(records, *current)
	}
	return records, nil
}

func parseOrderHeader(h header, row []string) OrderHeader {
	return OrderHeader{
		OrderID:            h.cell(row, OrderIDColumn),
		OrderDate:          ConvertSerialDate(h.cell(row, "Order Date")),
		Seller:             h.cell(row, "Seller"),
		BaseCurrency:       h.cell(row, "Base Currency"),
		Shipping:           CleanCurrency(h.cell(row, "Shipping")),
		Insurance:          CleanCurrency(h.cell(row, "Insurance")),
		AddChrg1:           CleanCurrency(h.cell(row, "Add Chrg 1")),
		AddChrg2:           CleanCurrency(h.cell(row, "Add Chrg 2")),
		Credit:             CleanCurrency(h.cell(row, "Credit")),
		CouponCredit:       CleanCurrency(h.cell(row, "Coupon Credit")),
		OrderTotal:         CleanCurrency(h.cell(row, "Order Total")),
		Tax:                CleanCurrency(h.cell(row, "Tax")),
		BaseGrandTotal:     CleanCurrency(h.cell(row, "Base Grand Total")),
		TotalLots:          CleanQuantity(h.cell(row, "Total Lots")),
		TotalItems:         CleanQuantity(h.cell(row, "Total Items")),
		OrderStatus:        h.cell(row, "Order Status"),
		OrderStatusChanged: ConvertSerialDate(h.cell(row, "Order Status Changed")),
		PmtIn:              h.cell(row, "Pmt In"),
		PmtMethod:          h.cell(row, "Pmt Method"),
		OrderNote:          h.cell(row, "Order Note"),
		TrackingNo:         h.cell(row, "Tracking No"),
		Location:           h.cell(row, "Location"),
	}
}

func parseOrderLine(h header, row []string) OrderLine {
	return OrderLine{
		Batch:           h.cell(row, "Batch"),
		BatchDate:       ConvertSerialDate(h.cell(row, "Batch Date")),
		Condition:       h.cell(row, "Condition"),
		ItemDescription: h.cell(row, "Item Description"),
		Qty:             CleanQuantity(h.cell(row, "Qty")),
		Each:            CleanCurrency(h.cell(row, "Each")),
		Total:           CleanCurrency(h.cell(row, "Total")),
		ItemType:        h.cell(row, "Item Type"),
		ItemNumber:      h.cell(row, "Item Number"),
		Weight:          util.ToFloat(h.cell(row, "Weight")),
		InvID:           h.cell(row, "Inv ID"),
		SubCondition:    h.cell(row, "Sub-Condition"),
	}
}
