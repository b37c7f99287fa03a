package model

// Sequence is a named monotonic counter
type Sequence struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	Value int64  `gorm:"not null" json:"value"`
}

func (Sequence) TableName() string {
	return "sequences"
}

const LegoSetSequence = "lego_set"
