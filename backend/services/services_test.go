package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quizhub/backend/models"
	"quizhub/backend/utils"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory database per test. The named
// shared-cache DSN keeps gorm's pooled connections on the same
// in-memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.AutoMigrate(db))
	return db
}

func createTeacher(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Email:    fmt.Sprintf("teacher%d@example.com", atomic.AddInt64(&testDBCounter, 1)),
		Password: "hash",
		Name:     "Teacher",
		Role:     models.RoleTeacher,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createStudent(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Email:    fmt.Sprintf("student%d@example.com", atomic.AddInt64(&testDBCounter, 1)),
		Password: "hash",
		Name:     "Student",
		Role:     models.RoleStudent,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createQuestion(t *testing.T, db *gorm.DB, teacherID uint, correct string) *models.Question {
	t.Helper()
	question := models.Question{
		Text:          "What is the answer?",
		OptionA:       "first",
		OptionB:       "second",
		OptionC:       "third",
		OptionD:       "fourth",
		CorrectAnswer: correct,
		CreatedByID:   teacherID,
	}
	require.NoError(t, db.Create(&question).Error)
	return &question
}

func createTestRow(t *testing.T, db *gorm.DB, teacherID uint, duration int) *models.Test {
	t.Helper()
	test := models.Test{
		Title:       "Quiz",
		Description: "A quiz",
		Duration:    duration,
		CreatedByID: teacherID,
	}
	require.NoError(t, db.Create(&test).Error)
	return &test
}
