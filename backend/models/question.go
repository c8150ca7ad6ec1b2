package models

import "gorm.io/gorm"

// Answer option labels for single-select questions.
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

func ValidOption(opt string) bool {
	switch opt {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

type Question struct {
	gorm.Model
	Text          string `gorm:"not null"`
	OptionA       string `gorm:"not null"`
	OptionB       string `gorm:"not null"`
	OptionC       string `gorm:"not null"`
	OptionD       string `gorm:"not null"`
	CorrectAnswer string `gorm:"size:1;not null"` // A, B, C or D
	CreatedByID   uint   `gorm:"index;not null"`
}
