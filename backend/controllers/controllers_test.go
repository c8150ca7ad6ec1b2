package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quizhub/backend/config"
	"quizhub/backend/routes"
	"quizhub/backend/utils"
)

var appDBCounter int64

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:api%d?mode=memory&cache=shared", atomic.AddInt64(&appDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.AutoMigrate(db))

	cfg := &config.Config{
		JWTSecret:       "testsecret",
		JWTExpiresHours: 24,
	}

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonData)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	if resp.Body != nil {
		json.NewDecoder(resp.Body).Decode(&result)
	}
	return resp.StatusCode, result
}

func registerUser(t *testing.T, app *fiber.App, email, role string) string {
	t.Helper()

	status, body := doRequest(t, app, "POST", "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret1",
		"name":     "Someone",
		"role":     role,
	})
	require.Equal(t, fiber.StatusCreated, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, "GET", "/api/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, "GET", "/api/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Resource not found", body["message"])
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	app := newTestApp(t)

	registerUser(t, app, "t@x.com", "TEACHER")

	status, body := doRequest(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email":    "t@x.com",
		"password": "secret1",
	})
	require.Equal(t, fiber.StatusOK, status)
	token := body["token"].(string)

	status, body = doRequest(t, app, "GET", "/api/auth/profile", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "t@x.com", user["email"])
	assert.Equal(t, "TEACHER", user["role"])
	assert.NotContains(t, user, "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)

	registerUser(t, app, "dup@x.com", "TEACHER")

	status, body := doRequest(t, app, "POST", "/api/auth/register", "", map[string]string{
		"email":    "dup@x.com",
		"password": "secret1",
		"name":     "Again",
		"role":     "STUDENT",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "User with this email already exists", body["message"])
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, "POST", "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "short",
		"name":     "",
		"role":     "ADMIN",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
	assert.NotEmpty(t, body["errors"])
}

func TestLoginBadPassword(t *testing.T) {
	app := newTestApp(t)

	registerUser(t, app, "who@x.com", "STUDENT")

	status, body := doRequest(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email":    "who@x.com",
		"password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", body["message"])
}

func TestAuthGates(t *testing.T) {
	app := newTestApp(t)

	// Missing token
	status, _ := doRequest(t, app, "GET", "/api/questions", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// Garbage token
	status, _ = doRequest(t, app, "GET", "/api/questions", "garbage", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// Wrong role
	studentToken := registerUser(t, app, "s@x.com", "STUDENT")
	status, body := doRequest(t, app, "GET", "/api/questions", studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body["message"], "TEACHER")

	teacherToken := registerUser(t, app, "t@x.com", "TEACHER")
	status, body = doRequest(t, app, "POST", "/api/attempts", teacherToken, map[string]uint{"testId": 1})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body["message"], "STUDENT")
}

func TestQuestionCRUDOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "teach@x.com", "TEACHER")

	status, body := doRequest(t, app, "POST", "/api/questions", token, map[string]string{
		"text":          "2+2?",
		"optionA":       "3",
		"optionB":       "4",
		"optionC":       "5",
		"optionD":       "6",
		"correctAnswer": "B",
	})
	require.Equal(t, fiber.StatusCreated, status)
	question := body["question"].(map[string]interface{})
	questionID := int(question["id"].(float64))

	status, body = doRequest(t, app, "PUT", fmt.Sprintf("/api/questions/%d", questionID), token, map[string]string{
		"text": "What is 2+2?",
	})
	require.Equal(t, fiber.StatusOK, status)
	question = body["question"].(map[string]interface{})
	assert.Equal(t, "What is 2+2?", question["text"])
	assert.Equal(t, "B", question["correctAnswer"])

	status, body = doRequest(t, app, "GET", "/api/questions?page=1&limit=10", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["total"])
	assert.Equal(t, float64(1), meta["pages"])

	status, _ = doRequest(t, app, "DELETE", fmt.Sprintf("/api/questions/%d", questionID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = doRequest(t, app, "GET", fmt.Sprintf("/api/questions/%d", questionID), token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

// Full workflow: a teacher authors four questions and a test, then a
// student takes it and submits.
func TestEndToEndAttemptFlow(t *testing.T) {
	app := newTestApp(t)
	teacherToken := registerUser(t, app, "teacher@x.com", "TEACHER")
	studentToken := registerUser(t, app, "student@x.com", "STUDENT")

	correct := []string{"A", "B", "C", "D"}
	questionIDs := make([]int, 0, 4)
	for i, answer := range correct {
		status, body := doRequest(t, app, "POST", "/api/questions", teacherToken, map[string]string{
			"text":          fmt.Sprintf("Question %d", i+1),
			"optionA":       "one",
			"optionB":       "two",
			"optionC":       "three",
			"optionD":       "four",
			"correctAnswer": answer,
		})
		require.Equal(t, fiber.StatusCreated, status)
		question := body["question"].(map[string]interface{})
		questionIDs = append(questionIDs, int(question["id"].(float64)))
	}

	status, body := doRequest(t, app, "POST", "/api/tests", teacherToken, map[string]interface{}{
		"title":       "Quiz1",
		"duration":    30,
		"questionIds": questionIDs,
	})
	require.Equal(t, fiber.StatusCreated, status)
	test := body["test"].(map[string]interface{})
	testID := int(test["id"].(float64))
	questions := test["questions"].([]interface{})
	require.Len(t, questions, 4)
	for i, q := range questions {
		entry := q.(map[string]interface{})
		assert.Equal(t, float64(questionIDs[i]), entry["id"])
		assert.Equal(t, float64(i+1), entry["order"])
	}

	// Teachers cannot start attempts, students cannot see the test
	status, _ = doRequest(t, app, "GET", fmt.Sprintf("/api/tests/%d", testID), studentToken, nil)
	require.Equal(t, fiber.StatusForbidden, status)

	status, body = doRequest(t, app, "POST", "/api/attempts", studentToken, map[string]int{"testId": testID})
	require.Equal(t, fiber.StatusCreated, status)
	attempt := body["attempt"].(map[string]interface{})
	attemptID := int(attempt["id"].(float64))
	assert.Equal(t, "In Progress", attempt["status"])
	assert.NotNil(t, attempt["timeRemaining"])

	// No correct answers leak while in progress
	for _, q := range attempt["questions"].([]interface{}) {
		entry := q.(map[string]interface{})
		assert.NotContains(t, entry, "correctAnswer")
		assert.NotContains(t, entry, "isCorrect")
	}

	// Starting again resumes the same attempt
	status, body = doRequest(t, app, "POST", "/api/attempts", studentToken, map[string]int{"testId": testID})
	require.Equal(t, fiber.StatusCreated, status)
	resumed := body["attempt"].(map[string]interface{})
	assert.Equal(t, float64(attemptID), resumed["id"])

	// Answer three of four correctly
	selections := []string{"A", "B", "A", "D"}
	for i, questionID := range questionIDs {
		status, _ = doRequest(t, app, "POST", fmt.Sprintf("/api/attempts/%d/answers", attemptID), studentToken, map[string]interface{}{
			"questionId":     questionID,
			"selectedOption": selections[i],
		})
		require.Equal(t, fiber.StatusOK, status)
	}

	status, body = doRequest(t, app, "PUT", fmt.Sprintf("/api/attempts/%d/submit", attemptID), studentToken, map[string]interface{}{})
	require.Equal(t, fiber.StatusOK, status)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, float64(75), result["score"])
	assert.Equal(t, float64(3), result["correctAnswers"])
	assert.Equal(t, float64(4), result["totalQuestions"])

	detailed := result["detailed"].(map[string]interface{})
	assert.Equal(t, "Completed", detailed["status"])
	for _, q := range detailed["questions"].([]interface{}) {
		entry := q.(map[string]interface{})
		assert.Contains(t, entry, "correctAnswer")
		assert.Contains(t, entry, "isCorrect")
	}

	// Answers are frozen after submission
	status, body = doRequest(t, app, "POST", fmt.Sprintf("/api/attempts/%d/answers", attemptID), studentToken, map[string]interface{}{
		"questionId":     questionIDs[0],
		"selectedOption": "C",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Cannot modify answers for a submitted test", body["message"])

	status, body = doRequest(t, app, "PUT", fmt.Sprintf("/api/attempts/%d/submit", attemptID), studentToken, map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Test is already submitted", body["message"])

	// Attempt list reflects completion
	status, body = doRequest(t, app, "GET", "/api/attempts", studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := body["data"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "Completed", row["status"])
	assert.Equal(t, float64(4), row["answeredQuestions"])
}

func TestRemoveQuestionOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "teacher2@x.com", "TEACHER")

	questionIDs := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		status, body := doRequest(t, app, "POST", "/api/questions", token, map[string]string{
			"text":          fmt.Sprintf("Q%d", i+1),
			"optionA":       "a",
			"optionB":       "b",
			"optionC":       "c",
			"optionD":       "d",
			"correctAnswer": "A",
		})
		require.Equal(t, fiber.StatusCreated, status)
		question := body["question"].(map[string]interface{})
		questionIDs = append(questionIDs, int(question["id"].(float64)))
	}

	status, body := doRequest(t, app, "POST", "/api/tests", token, map[string]interface{}{
		"title":       "Ordered",
		"duration":    15,
		"questionIds": questionIDs,
	})
	require.Equal(t, fiber.StatusCreated, status)
	test := body["test"].(map[string]interface{})
	testID := int(test["id"].(float64))

	status, body = doRequest(t, app, "DELETE", fmt.Sprintf("/api/tests/%d/questions/%d", testID, questionIDs[0]), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	test = body["test"].(map[string]interface{})
	questions := test["questions"].([]interface{})
	require.Len(t, questions, 2)
	assert.Equal(t, float64(questionIDs[1]), questions[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(1), questions[0].(map[string]interface{})["order"])
	assert.Equal(t, float64(questionIDs[2]), questions[1].(map[string]interface{})["id"])
	assert.Equal(t, float64(2), questions[1].(map[string]interface{})["order"])
}
