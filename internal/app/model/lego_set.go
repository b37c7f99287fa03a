package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const SetCodePrefix = "SET-"

// FormatSetCode renders a sequence value as SET-0001. Values above 9999 keep all digits.
func FormatSetCode(n int64) string {
	return fmt.Sprintf("%s%04d", SetCodePrefix, n)
}

// ParseSetCode extracts the numeric suffix of a set code
func ParseSetCode(code string) (int64, bool) {
	if !strings.HasPrefix(code, SetCodePrefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(code, SetCodePrefix), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

type LegoSet struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	SetID          string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"setId"`     // SET-0001
	SetName        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"setName"`  // unique human name
	SetDescription string    `gorm:"type:text" json:"setDescription"`
	SetImage       Image     `gorm:"embedded;embeddedPrefix:set_image_" json:"setImage"`
	NumberOfSets   int       `gorm:"not null" json:"numberOfSets"` // physical sets owned
	XValue         float64   `gorm:"not null" json:"xValue"`       // PaB price multiplier
	YValue         float64   `gorm:"not null" json:"yValue"`       // cost price multiplier
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Parts is loaded through lego_set_parts in position order
	Parts []Part `gorm:"-" json:"parts"`
}

func (LegoSet) TableName() string {
	return "lego_sets"
}

// LegoSetPart is one slot of a set's ordered part list. A part may occupy
// slots in many sets; deleting a set removes only its slots.
type LegoSetPart struct {
	LegoSetID uint `gorm:"primaryKey;autoIncrement:false" json:"legoSetId"`
	Position  int  `gorm:"primaryKey;autoIncrement:false" json:"position"`
	PartID    uint `gorm:"not null;index" json:"partId"`
}

func (LegoSetPart) TableName() string {
	return "lego_set_parts"
}
