package enrollmentController_test

import (
	"fmt"
	"net/http"
	"testing"

	"lms/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func setupCourse(t *testing.T, app *fiber.App) uint {
	t.Helper()

	token, _ := testutil.Register(t, app, "teach@x.com", "password1", "INSTRUCTOR")
	resp := testutil.Do(t, app, http.MethodPost, "/api/courses", token, map[string]interface{}{
		"title":       "Intro",
		"description": "d",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return uint(resp.Data["id"].(float64))
}

func TestEnrollInCourse(t *testing.T) {
	app := testutil.SetupApp(t)
	courseID := setupCourse(t, app)
	token, studentID := testutil.Register(t, app, "b@x.com", "password1", "STUDENT")

	resp := testutil.Do(t, app, http.MethodPost, "/api/enrollments", token, map[string]interface{}{
		"course_id": courseID,
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, float64(studentID), resp.Data["student_id"])
	require.Equal(t, float64(courseID), resp.Data["course_id"])
	require.NotEmpty(t, resp.Data["enrolled_at"])
}

func TestEnrollTwiceConflicts(t *testing.T) {
	app := testutil.SetupApp(t)
	courseID := setupCourse(t, app)
	token, _ := testutil.Register(t, app, "b@x.com", "password1", "STUDENT")

	resp := testutil.Do(t, app, http.MethodPost, "/api/enrollments", token, map[string]interface{}{
		"course_id": courseID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = testutil.Do(t, app, http.MethodPost, "/api/enrollments", token, map[string]interface{}{
		"course_id": courseID,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestEnrollUnknownCourse(t *testing.T) {
	app := testutil.SetupApp(t)
	token, _ := testutil.Register(t, app, "b@x.com", "password1", "STUDENT")

	resp := testutil.Do(t, app, http.MethodPost, "/api/enrollments", token, map[string]interface{}{
		"course_id": 9999,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEnrollRequiresStudentRole(t *testing.T) {
	app := testutil.SetupApp(t)
	courseID := setupCourse(t, app)
	token, _ := testutil.Register(t, app, "i2@x.com", "password1", "INSTRUCTOR")

	resp := testutil.Do(t, app, http.MethodPost, "/api/enrollments", token, map[string]interface{}{
		"course_id": courseID,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetEnrollmentsJoinsCourse(t *testing.T) {
	app := testutil.SetupApp(t)
	courseID := setupCourse(t, app)
	token, _ := testutil.Register(t, app, "b@x.com", "password1", "STUDENT")
	otherToken, _ := testutil.Register(t, app, "c@x.com", "password1", "STUDENT")

	resp := testutil.Do(t, app, http.MethodPost, "/api/enrollments", token, map[string]interface{}{
		"course_id": courseID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Listing only returns the caller's own enrollments.
	resp = testutil.Do(t, app, http.MethodGet, "/api/enrollments/", otherToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, mustEnrollments(t, resp), 0)

	resp = testutil.Do(t, app, http.MethodGet, "/api/enrollments/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	enrollments := mustEnrollments(t, resp)
	require.Len(t, enrollments, 1)
	require.Equal(t, "Intro", enrollments[0]["course_title"])
	require.Equal(t, "d", enrollments[0]["course_description"])
}

func mustEnrollments(t *testing.T, resp testutil.Response) []map[string]interface{} {
	t.Helper()

	items, ok := resp.Data["enrollments"].([]interface{})
	require.True(t, ok, "missing enrollments in %v", resp.Data)

	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, item.(map[string]interface{}))
	}
	return out
}

func TestDeleteEnrollment(t *testing.T) {
	app := testutil.SetupApp(t)
	courseID := setupCourse(t, app)
	token, _ := testutil.Register(t, app, "b@x.com", "password1", "STUDENT")
	otherToken, _ := testutil.Register(t, app, "c@x.com", "password1", "STUDENT")

	resp := testutil.Do(t, app, http.MethodPost, "/api/enrollments", token, map[string]interface{}{
		"course_id": courseID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	enrollmentID := uint(resp.Data["id"].(float64))

	resp = testutil.Do(t, app, http.MethodDelete, fmt.Sprintf("/api/enrollments/%d", enrollmentID), otherToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = testutil.Do(t, app, http.MethodDelete, fmt.Sprintf("/api/enrollments/%d", enrollmentID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = testutil.Do(t, app, http.MethodDelete, fmt.Sprintf("/api/enrollments/%d", enrollmentID), token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
