// Package testutil assembles an in-process application against a sqlite
// database for handler-level tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lms/audit"
	"lms/config"
	"lms/database"
	"lms/middleware"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	enrollmentRoutes "lms/routers/enrollmentRoutes"
	progressRoutes "lms/routers/progressRoutes"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory sqlite database with foreign keys enforced,
// migrates the schema and installs it as the global handle.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	// In-memory sqlite gives every pooled connection its own database;
	// pin the pool to one connection so all queries see the same schema.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	t.Cleanup(func() {
		database.Database = database.DbInstance{}
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing test database: %v", err)
		}
	})

	return db
}

// SetupApp wires config, database, audit recorder and routes the way main
// does, with a rate limit ceiling high enough to stay out of the way.
func SetupApp(t *testing.T) *fiber.App {
	t.Helper()

	config.AppConfig = &config.Config{
		Port:               "0",
		JWTKey:             strings.Repeat("t", 32),
		TokenTTL:           time.Hour,
		SaltRound:          4,
		RateLimitMax:       10000,
		RateLimitWindow:    time.Minute,
		RateLimitSweepEach: 5 * time.Minute,
		AllowOrigins:       "http://localhost:5173",
	}

	db := SetupTestDB(t)
	audit.Start(db, 64)
	t.Cleanup(audit.Stop)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return middleware.JsonResponse(c, fiberErr.Code, false, fiberErr.Message, nil)
			}
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
		},
	})

	limiter := middleware.NewRateLimiter(config.AppConfig.RateLimitMax, config.AppConfig.RateLimitWindow)
	app.Use("/api", middleware.RequireJSON, limiter.Handler())

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app)
	progressRoutes.SetupProgressRoutes(app)

	return app
}

// Response is a decoded API envelope.
type Response struct {
	StatusCode int
	Status     bool
	Message    string
	Data       map[string]interface{}
	RawData    json.RawMessage
}

// Do performs one request against the app and decodes the envelope.
// A nil body sends no payload; token may be empty.
func Do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := Response{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	if len(raw) == 0 {
		return out
	}

	envelope := struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("failed to decode envelope %q: %v", raw, err)
	}

	out.Status = envelope.Status
	out.Message = envelope.Message
	out.RawData = envelope.Data

	if len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		if err := json.Unmarshal(envelope.Data, &out.Data); err != nil {
			t.Fatalf("failed to decode data %q: %v", envelope.Data, err)
		}
	}

	return out
}

// DecodeList decodes an envelope's raw data as a JSON array of objects.
func DecodeList(t *testing.T, raw json.RawMessage) []map[string]interface{} {
	t.Helper()

	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("failed to decode list %q: %v", raw, err)
	}
	return items
}

// RawRequest performs a request with an explicit content type and raw body,
// for exercising the pipeline guards themselves.
func RawRequest(t *testing.T, app *fiber.App, method, path, contentType, body string) Response {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	return Response{StatusCode: resp.StatusCode}
}

// Register creates a user through the API and returns its token and id.
func Register(t *testing.T, app *fiber.App, email, password, role string) (string, uint) {
	t.Helper()

	resp := Do(t, app, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":    email,
		"password": password,
		"role":     role,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s returned %d: %s", email, resp.StatusCode, resp.Message)
	}

	token, _ := resp.Data["token"].(string)
	user, _ := resp.Data["user"].(map[string]interface{})
	id, _ := user["id"].(float64)

	if token == "" || id == 0 {
		t.Fatalf("register %s returned incomplete payload: %v", email, resp.Data)
	}

	return token, uint(id)
}
