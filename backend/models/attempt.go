package models

import (
	"time"

	"gorm.io/gorm"
)

// Attempt status values derived from SubmittedAt.
const (
	AttemptInProgress = "In Progress"
	AttemptCompleted  = "Completed"
)

type TestAttempt struct {
	gorm.Model
	TestID      uint       `gorm:"index;not null"`
	StudentID   uint       `gorm:"index;not null"`
	StartedAt   time.Time  `gorm:"not null"`
	SubmittedAt *time.Time // nil while in progress
	Score       *int       // 0..100, set at submission

	Test    Test
	Answers []StudentAnswer
}

func (a *TestAttempt) Status() string {
	if a.SubmittedAt != nil {
		return AttemptCompleted
	}
	return AttemptInProgress
}

// StudentAnswer holds at most one selection per (attempt, question).
// IsCorrect stays false until the attempt is scored at submission.
type StudentAnswer struct {
	gorm.Model
	TestAttemptID  uint   `gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID     uint   `gorm:"not null;uniqueIndex:idx_attempt_question"`
	SelectedOption string `gorm:"size:1;not null"`
	IsCorrect      bool   `gorm:"not null;default:false"`
}
