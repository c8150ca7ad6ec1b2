package models

import "gorm.io/gorm"

type Test struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Description string
	Duration    int  `gorm:"not null"` // minutes, 5..180
	CreatedByID uint `gorm:"index;not null"`
	Questions   []TestQuestion
}

// TestQuestion links a question into a test at a 1-based position.
// Positions within one test stay dense; the test service re-sequences
// them on every add and remove.
type TestQuestion struct {
	gorm.Model
	TestID     uint `gorm:"index;not null"`
	QuestionID uint `gorm:"index;not null"`
	Position   int  `gorm:"not null" json:"order"`

	Question Question
}
