package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"folio/internal/config"
	"folio/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminEmail     = "admin@example.com"
	testCallbackSecret = "callback-secret"
)

var testPosts = map[string]string{
	"welcome-post.md": `---
title: "Welcome"
description: "First post"
date: "2024-03-01"
tags: ["intro", "go"]
featured: true
---
# Welcome

Hello and welcome.
`,
	"go-tips.md": `---
title: "Go Tips"
date: "2024-02-01"
tags: ["go"]
---
Some tips about goroutines.
`,
}

type testEnv struct {
	app *fiber.App
	srv *Server
	db  *gorm.DB
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for name, body := range testPosts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return &config.Config{
		Port:               "0",
		Env:                "test",
		SiteName:           "folio-test",
		FeatureFlags:       "comments=on,reactions=on,page_views=on",
		SessionSecret:      "test-session-secret-which-is-long-enough",
		SessionTTLHours:    1,
		AuthCallbackSecret: testCallbackSecret,
		AdminEmails:        testAdminEmail,
		ContentDir:         dir,
		ContentFormat:      "lines",
		DBRetryAttempts:    1,
		DBRetryInitialMS:   1,
	}
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// newTestEnv builds a fully routed app on sqlite. mutate may adjust the
// config before the server is built; rdb may be nil.
func newTestEnv(t *testing.T, rdb *redis.Client, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	db := setupSQLiteDB(t)

	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return &testEnv{app: app, srv: srv, db: db}
}

// do sends a JSON request and decodes the JSON response body, if any.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

// signIn runs the auth callback for email and returns the session token
// and stored user id.
func (e *testEnv) signIn(t *testing.T, email string) (string, string) {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"email": email, "name": "Test User", "provider": "github"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/callback", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(CallbackSecretHeader, testCallbackSecret)

	resp, body := e.send(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	data := body["data"].(map[string]any)
	session := data["session"].(map[string]any)
	return data["token"].(string), session["userId"].(string)
}

func dataOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", body)
	return data
}
