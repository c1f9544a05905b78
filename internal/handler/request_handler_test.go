package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/carelink-go-api/internal/dto"
)

func createRequest(t *testing.T, app *fiber.App, seniorID uint, payload fiber.Map) dto.RequestResponse {
	t.Helper()

	body := fiber.Map{
		"senior_id":   seniorID,
		"title":       "Weekly groceries",
		"description": "Pick up groceries from the market",
		"type":        "groceries",
	}
	for key, value := range payload {
		body[key] = value
	}

	resp := doJSON(t, app, http.MethodPost, "/api/v1/requests", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created dto.RequestResponse
	decodeData(t, resp, &created)
	require.NotZero(t, created.ID)

	return created
}

func TestRequestLifecycleEndToEnd(t *testing.T) {
	app := newTestApp(t)
	seniorID := registerSenior(t, app)
	studentID := registerStudent(t, app)

	created := createRequest(t, app, seniorID, fiber.Map{
		"priority":           "high",
		"location":           "Jayanagar",
		"estimated_duration": 120,
	})
	require.Equal(t, "open", created.Status)

	// The open pool serves the new request to browsing students.
	resp := doJSON(t, app, http.MethodGet, "/api/v1/requests/open?type=groceries", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var open []dto.RequestResponse
	decodeData(t, resp, &open)
	require.Len(t, open, 1)
	require.NotNil(t, open[0].Senior)

	// Claim it.
	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/accept", created.ID), fiber.Map{"student_id": studentID})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var accepted dto.RequestResponse
	decodeData(t, resp, &accepted)
	require.Equal(t, "assigned", accepted.Status)
	require.NotNil(t, accepted.AssignedAt)

	// The pool no longer offers it.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/requests/open", nil)
	decodeData(t, resp, &open)
	require.Empty(t, open)

	// Drive it through in_progress to completed.
	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/status", created.ID), fiber.Map{"status": "in_progress"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/status", created.ID), fiber.Map{"status": "completed"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var completed dto.RequestResponse
	decodeData(t, resp, &completed)
	require.Equal(t, "completed", completed.Status)
	require.NotNil(t, completed.CompletedAt)

	// Completion credited the volunteer: 120 minutes is 2 hours, 200 points.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/students/%d/volunteer-stats", studentID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats dto.VolunteerStatsResponse
	decodeData(t, resp, &stats)
	require.EqualValues(t, 1, stats.CompletedTasks)
	require.InDelta(t, 2.0, stats.Hours, 0.001)
	require.EqualValues(t, 200, stats.Points)

	// A second completion is a conflict, not a double credit.
	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/status", created.ID), fiber.Map{"status": "completed"})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// The student queue still shows the completed request.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/requests/student/%d?status=completed", studentID), nil)
	var queue []dto.RequestResponse
	decodeData(t, resp, &queue)
	require.Len(t, queue, 1)

	// The senior's default feed hides it.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/requests/senior/%d", seniorID), nil)
	var feed []dto.RequestResponse
	decodeData(t, resp, &feed)
	require.Empty(t, feed)
}

func TestRequestAcceptConflicts(t *testing.T) {
	app := newTestApp(t)
	seniorID := registerSenior(t, app)
	first := registerStudent(t, app)
	second := registerStudent(t, app)

	created := createRequest(t, app, seniorID, nil)

	resp := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/accept", created.ID), fiber.Map{"student_id": first})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/accept", created.ID), fiber.Map{"student_id": second})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/requests/9999/accept", fiber.Map{"student_id": first})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/accept", created.ID), fiber.Map{"student_id": 9999})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRequestCreateValidation(t *testing.T) {
	app := newTestApp(t)
	seniorID := registerSenior(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/requests", fiber.Map{
		"senior_id":   seniorID,
		"title":       "Fix my spaceship",
		"description": "It broke",
		"type":        "spaceship_repair",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/requests", fiber.Map{
		"senior_id":   9999,
		"title":       "Weekly groceries",
		"description": "Pick up groceries",
		"type":        "groceries",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRequestStatusEndpoint(t *testing.T) {
	app := newTestApp(t)
	seniorID := registerSenior(t, app)
	created := createRequest(t, app, seniorID, nil)

	// Starting an open request has no lifecycle edge.
	resp := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/status", created.ID), fiber.Map{"status": "in_progress"})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Unknown target states are rejected outright.
	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/status", created.ID), fiber.Map{"status": "paused"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Cancelling an open request purges it.
	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/status", created.ID), fiber.Map{"status": "cancelled"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/requests/%d/status", created.ID), fiber.Map{"status": "cancelled"})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestOpenPoolOrdering(t *testing.T) {
	app := newTestApp(t)
	seniorID := registerSenior(t, app)

	createRequest(t, app, seniorID, fiber.Map{"title": "Low priority errand", "priority": "low"})
	createRequest(t, app, seniorID, fiber.Map{"title": "Urgent hospital run", "type": "hospital", "priority": "urgent"})
	createRequest(t, app, seniorID, fiber.Map{"title": "Medium chores"})

	resp := doJSON(t, app, http.MethodGet, "/api/v1/requests/open", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var open []dto.RequestResponse
	decodeData(t, resp, &open)
	require.Len(t, open, 3)
	require.Equal(t, "Urgent hospital run", open[0].Title)
	require.Equal(t, "Medium chores", open[1].Title)
	require.Equal(t, "Low priority errand", open[2].Title)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/requests/open?priority=volcanic", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
