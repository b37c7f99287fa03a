package model

import (
	"strings"
	"time"
)

type BsStandard string

const (
	BsStandardBS       BsStandard = "BS"
	BsStandardStandard BsStandard = "Standard"
)

// NormalizeBsStandard maps free-form spreadsheet values onto the two known flags.
// Anything unrecognized falls back to BS.
func NormalizeBsStandard(value string) BsStandard {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "standard", "standart":
		return BsStandardStandard
	default:
		return BsStandardBS
	}
}

// Image is a reference to an asset held by the image host
type Image struct {
	PublicID string `gorm:"type:varchar(255)" json:"public_id"`
	URL      string `gorm:"type:text" json:"url"`
}

func (i Image) IsZero() bool {
	return i.PublicID == "" && i.URL == ""
}

// Part is identified by (item_id, part_id); weight is stored in grams.
type Part struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	ItemID          int64      `gorm:"not null;uniqueIndex:idx_parts_item_part,priority:1" json:"item_id"`
	PartID          string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_parts_item_part,priority:2" json:"part_id"`
	Name            string     `gorm:"type:varchar(255);not null" json:"name"`
	ItemDescription string     `gorm:"type:text" json:"item_description"`
	Color           string     `gorm:"type:varchar(100)" json:"color"`
	PaB             float64    `gorm:"column:pab" json:"PaB"`                  // PaB unit price
	US              float64    `gorm:"column:us" json:"US"`                    // US unit price
	Weight          float64    `json:"weight"`                                 // grams
	Quantity        int        `json:"quantity"`                               // per set
	Ordered         int        `json:"ordered"`
	Inventory       int        `json:"inventory"`
	QSet            int        `gorm:"column:q_set" json:"qSet"`               // quantity x number of sets
	Needed          int        `json:"needed"`
	World           float64    `gorm:"column:world" json:"World"`
	Cost            float64    `json:"cost"`
	SalesPrice      float64    `json:"salesPrice"`
	PabPriceX       float64    `gorm:"column:pab_price_x" json:"pabPrice_x"`   // PaB x set xValue
	CostPriceY      float64    `gorm:"column:cost_price_y" json:"costPrice_y"` // cost x set yValue
	BsStandard      BsStandard `gorm:"type:varchar(20);not null" json:"bsStandard"`
	PartImage       Image      `gorm:"embedded;embeddedPrefix:part_image_" json:"partImage"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (Part) TableName() string {
	return "parts"
}
