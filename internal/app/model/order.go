package model

import (
	"time"
)

type ItemCondition string

const (
	ConditionNew  ItemCondition = "New"
	ConditionUsed ItemCondition = "Used"
)

// NormalizeCondition accepts N/U shorthands used by marketplace exports
func NormalizeCondition(value string) ItemCondition {
	switch value {
	case "Used", "used", "U", "u":
		return ConditionUsed
	default:
		return ConditionNew
	}
}

// Money is an amount with its currency
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `gorm:"type:varchar(10)" json:"currency"`
}

type Payment struct {
	PmtIn     string `gorm:"type:varchar(50)" json:"pmtIn"`
	PmtMethod string `gorm:"type:varchar(100)" json:"pmtMethod"`
}

// OrderDetails is the header of one purchase, unique by the marketplace order id
type OrderDetails struct {
	ID                 uint       `gorm:"primarykey" json:"id"`
	OrderID            int64      `gorm:"not null;uniqueIndex" json:"orderId"` // marketplace order id
	OrderDate          time.Time  `gorm:"not null" json:"orderDate"`
	Seller             string     `gorm:"type:varchar(255)" json:"seller"`
	BaseCurrency       string     `gorm:"type:varchar(10)" json:"baseCurrency"`
	Shipping           float64    `json:"shipping"`
	Insurance          float64    `json:"insurance"`
	AddChrg1           float64    `gorm:"column:add_chrg1" json:"addChrg1"`
	AddChrg2           float64    `gorm:"column:add_chrg2" json:"addChrg2"`
	Credit             float64    `json:"credit"`
	CouponCredit       float64    `json:"couponCredit"`
	OrderTotal         Money      `gorm:"embedded;embeddedPrefix:order_total_" json:"orderTotal"`
	Tax                Money      `gorm:"embedded;embeddedPrefix:tax_" json:"tax"`
	BaseGrandTotal     Money      `gorm:"embedded;embeddedPrefix:base_grand_total_" json:"baseGrandTotal"`
	TotalLots          int        `json:"totalLots"`
	TotalItems         int        `json:"totalItems"`
	OrderStatus        string     `gorm:"type:varchar(50)" json:"orderStatus"`
	OrderStatusChanged *time.Time `json:"orderStatusChanged,omitempty"`
	Payment            Payment    `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	OrderNote          string     `gorm:"type:text" json:"orderNote"`
	TrackingNo         string     `gorm:"type:varchar(100)" json:"trackingNo"`
	Location           string     `gorm:"type:varchar(255)" json:"location"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func (OrderDetails) TableName() string {
	return "order_details"
}

// Order owns its line items and exactly one OrderDetails
type Order struct {
	ID             uint         `gorm:"primarykey" json:"id"`
	OrderDetailsID uint         `gorm:"not null;uniqueIndex" json:"-"`
	OrderDetails   OrderDetails `gorm:"foreignKey:OrderDetailsID" json:"orderData"`
	Items          []OrderItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	OrderID         uint          `gorm:"not null;index" json:"-"`
	Position        int           `gorm:"not null" json:"-"` // input order within the order
	Batch           int64         `json:"batch"`
	BatchDate       *time.Time    `json:"batchDate,omitempty"`
	Condition       ItemCondition `gorm:"type:varchar(10);not null" json:"condition"`
	ItemDescription string        `gorm:"type:text" json:"itemDescription"`
	Qty             int           `json:"qty"`
	Each            float64       `json:"each"`
	Total           float64       `json:"total"`
	ItemType        string        `gorm:"type:varchar(50)" json:"itemType"`
	ItemNumber      string        `gorm:"type:varchar(100)" json:"itemNumber"` // numeric or alphanumeric catalog number
	Weight          float64       `json:"weight"`
	InvID           string        `gorm:"type:varchar(100)" json:"invId"`
	SubCondition    string        `gorm:"type:varchar(50)" json:"subCondition"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
