package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noah-isme/carelink-go-api/internal/config"
	"github.com/noah-isme/carelink-go-api/internal/handler"
	"github.com/noah-isme/carelink-go-api/internal/models"
	"github.com/noah-isme/carelink-go-api/internal/repository"
	"github.com/noah-isme/carelink-go-api/internal/router"
	"github.com/noah-isme/carelink-go-api/internal/service"
)

// newTestApp wires the full HTTP stack against an isolated in-memory sqlite
// database. No push sender, event bus or cache is attached.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Senior{}, &models.Student{}, &models.ServiceRequest{}, &models.Feedback{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	requestRepo := repository.NewRequestRepository(db)
	seniorRepo := repository.NewSeniorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	requestService := service.NewRequestService(requestRepo, seniorRepo, studentRepo, nil, validate, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, requestRepo, nil, time.Minute, validate, logger)
	seniorService := service.NewSeniorService(seniorRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, requestRepo, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "CareLink API"}, router.Dependencies{
		RequestHandler:  handler.NewRequestHandler(requestService, logger),
		FeedbackHandler: handler.NewFeedbackHandler(feedbackService, logger),
		SeniorHandler:   handler.NewSeniorHandler(seniorService, logger),
		StudentHandler:  handler.NewStudentHandler(studentService, logger),
	})

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeData(t *testing.T, resp *http.Response, target interface{}) envelope {
	t.Helper()

	var wrapped envelope
	decodeResponse(t, resp, &wrapped)
	if target != nil && len(wrapped.Data) > 0 {
		require.NoError(t, json.Unmarshal(wrapped.Data, target))
	}

	return wrapped
}

func registerSenior(t *testing.T, app *fiber.App) uint {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/seniors", fiber.Map{
		"full_name": "Lakshmi Rao",
		"email":     fmt.Sprintf("lakshmi+%d@example.com", time.Now().UnixNano()),
		"age":       72,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var senior struct {
		ID uint `json:"id"`
	}
	decodeData(t, resp, &senior)
	require.NotZero(t, senior.ID)

	return senior.ID
}

func registerStudent(t *testing.T, app *fiber.App) uint {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/students", fiber.Map{
		"full_name":    "Arjun Mehta",
		"email":        fmt.Sprintf("arjun+%d@example.com", time.Now().UnixNano()),
		"phone_number": "9876543210",
		"college":      "RV College",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var student struct {
		ID uint `json:"id"`
	}
	decodeData(t, resp, &student)
	require.NotZero(t, student.ID)

	return student.ID
}
