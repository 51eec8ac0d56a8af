package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"notsolong/internal/config"
	"notsolong/internal/db"
	"notsolong/internal/router"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:            "dev",
		JWTSecretKey:   "test-secret",
		JWTIssuer:      "notsolong-test",
		JWTAccessTTL:   time.Hour,
		JWTRefreshTTL:  24 * time.Hour,
		VoteRateLimit:  100,
		VoteRateWindow: time.Minute,
	}
}

// newTestServer wires the real router against an in-memory SQLite
// database. No Redis: the in-process rate limiter is used.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return router.New(testConfig(), conn, nil), conn
}

// doJSON performs a request and decodes the JSON response body.
func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, decoded
}

// registerUser creates an account over the API and returns its access
// token and user id.
func registerUser(t *testing.T, r http.Handler, email string) (string, uint) {
	t.Helper()
	status, body := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":    email,
		"password": "password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", email, status, body)
	}
	tokens := body["tokens"].(map[string]interface{})
	user := body["user"].(map[string]interface{})
	return tokens["access"].(string), uint(user["id"].(float64))
}

func numField(t *testing.T, body map[string]interface{}, key string) float64 {
	t.Helper()
	v, ok := body[key].(float64)
	if !ok {
		t.Fatalf("field %q missing or not a number in %v", key, body)
	}
	return v
}
