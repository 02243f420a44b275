package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lms/audit"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitHandlerRejectsAndAudits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	audit.Start(db, 16)
	t.Cleanup(audit.Stop)

	rl := middleware.NewRateLimiter(2, time.Minute)

	app := fiber.New()
	app.Use(rl.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// The rejection is audited with no user identity.
	var entry models.AuditEntry
	require.Eventually(t, func() bool {
		return db.Where("action = ?", audit.ActionRateLimitExceeded).First(&entry).Error == nil
	}, 2*time.Second, 5*time.Millisecond)
	require.Nil(t, entry.UserID)
	require.NotEmpty(t, entry.ClientAddress)
}

func TestJWTMiddlewareRejectsMissingAndBadHeaders(t *testing.T) {
	app := testutil.SetupApp(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/courses/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

// A valid token whose subject no longer exists in the credential store is
// rejected: identity is re-resolved on every request.
func TestJWTMiddlewareRejectsDeletedSubject(t *testing.T) {
	app := testutil.SetupApp(t)
	token, userID := testutil.Register(t, app, "gone@x.com", "password1", "STUDENT")

	require.NoError(t, database.Database.Db.Delete(&models.User{}, userID).Error)

	resp := testutil.Do(t, app, http.MethodGet, "/api/courses/", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
