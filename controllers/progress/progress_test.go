package progressController_test

import (
	"fmt"
	"net/http"
	"testing"

	"lms/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	app          *fiber.App
	studentToken string
	courseID     uint
	lessonIDs    []uint
}

// setupFixture builds one course with lessons and a registered student.
// Enrollment is left to each test.
func setupFixture(t *testing.T, lessonCount int) fixture {
	t.Helper()

	app := testutil.SetupApp(t)
	instructorToken, _ := testutil.Register(t, app, "teach@x.com", "password1", "INSTRUCTOR")

	resp := testutil.Do(t, app, http.MethodPost, "/api/courses", instructorToken, map[string]interface{}{
		"title":       "Intro",
		"description": "d",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	courseID := uint(resp.Data["id"].(float64))

	var lessonIDs []uint
	for i := 0; i < lessonCount; i++ {
		resp := testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/api/courses/%d/lessons", courseID), instructorToken, map[string]interface{}{
			"title":       fmt.Sprintf("Lesson %d", i+1),
			"order_index": i,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		lessonIDs = append(lessonIDs, uint(resp.Data["id"].(float64)))
	}

	studentToken, _ := testutil.Register(t, app, "b@x.com", "password1", "STUDENT")

	return fixture{app: app, studentToken: studentToken, courseID: courseID, lessonIDs: lessonIDs}
}

func (f fixture) enroll(t *testing.T) {
	t.Helper()

	resp := testutil.Do(t, f.app, http.MethodPost, "/api/enrollments", f.studentToken, map[string]interface{}{
		"course_id": f.courseID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestProgressRequiresEnrollment(t *testing.T) {
	f := setupFixture(t, 1)

	resp := testutil.Do(t, f.app, http.MethodPost, "/api/progress", f.studentToken, map[string]interface{}{
		"lesson_id": f.lessonIDs[0],
		"completed": true,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Enrolling turns the same request into a success.
	f.enroll(t)

	resp = testutil.Do(t, f.app, http.MethodPost, "/api/progress", f.studentToken, map[string]interface{}{
		"lesson_id": f.lessonIDs[0],
		"completed": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, resp.Data["completed"])
	require.NotEmpty(t, resp.Data["completed_at"])
}

func TestProgressUnknownLesson(t *testing.T) {
	f := setupFixture(t, 0)
	f.enroll(t)

	resp := testutil.Do(t, f.app, http.MethodPost, "/api/progress", f.studentToken, map[string]interface{}{
		"lesson_id": 999,
		"completed": true,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProgressIdempotentToggle(t *testing.T) {
	f := setupFixture(t, 1)
	f.enroll(t)

	post := func(completed bool) testutil.Response {
		resp := testutil.Do(t, f.app, http.MethodPost, "/api/progress", f.studentToken, map[string]interface{}{
			"lesson_id": f.lessonIDs[0],
			"completed": completed,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return resp
	}

	first := post(true)
	second := post(true)

	// A repeated identical transition is a no-op: same timestamp both times.
	require.Equal(t, first.Data["completed_at"], second.Data["completed_at"])
	require.Equal(t, first.Data["id"], second.Data["id"])

	// Flipping back clears the timestamp; history is not retained.
	cleared := post(false)
	require.Equal(t, false, cleared.Data["completed"])
	require.Nil(t, cleared.Data["completed_at"])

	reopened := post(true)
	require.Equal(t, true, reopened.Data["completed"])
	require.NotEmpty(t, reopened.Data["completed_at"])
}

func TestCourseProgressListing(t *testing.T) {
	f := setupFixture(t, 3)
	f.enroll(t)

	// Complete lessons out of order.
	for _, i := range []int{2, 0} {
		resp := testutil.Do(t, f.app, http.MethodPost, "/api/progress", f.studentToken, map[string]interface{}{
			"lesson_id": f.lessonIDs[i],
			"completed": true,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := testutil.Do(t, f.app, http.MethodGet, fmt.Sprintf("/api/courses/%d/progress", f.courseID), f.studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rows := testutil.DecodeList(t, resp.RawData)
	require.Len(t, rows, 2)

	// Rows come back in lesson order, not completion order.
	require.Equal(t, float64(f.lessonIDs[0]), rows[0]["lesson_id"])
	require.Equal(t, float64(f.lessonIDs[2]), rows[1]["lesson_id"])
}

func TestCourseProgressRequiresEnrollment(t *testing.T) {
	f := setupFixture(t, 1)

	resp := testutil.Do(t, f.app, http.MethodGet, fmt.Sprintf("/api/courses/%d/progress", f.courseID), f.studentToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = testutil.Do(t, f.app, http.MethodGet, "/api/courses/9999/progress", f.studentToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProgressRequiresStudentRole(t *testing.T) {
	f := setupFixture(t, 1)

	instructorToken, _ := testutil.Register(t, f.app, "other@x.com", "password1", "INSTRUCTOR")
	resp := testutil.Do(t, f.app, http.MethodPost, "/api/progress", instructorToken, map[string]interface{}{
		"lesson_id": f.lessonIDs[0],
		"completed": true,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
