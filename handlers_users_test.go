package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func refreshRouter(a *app) *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/users/refresh-token", a.refreshToken)
	return r
}

func postRefresh(r http.Handler, refresh string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"refreshToken": refresh})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// A credential-store outage during rotation is a server failure, not a bad
// token: the client must see 500, never the generic 401.
func TestRefreshTokenStoreFailureIsServerError(t *testing.T) {
	a, creds := testApp(t)
	pair, err := a.tokens.IssuePair(context.Background(), 1, "alice")
	require.NoError(t, err)
	creds.updateErr = errors.New("pq: connection refused")
	r := refreshRouter(a)

	w := postRefresh(r, pair.Refresh)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "token refresh failed")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRefreshTokenReplayIsUnauthorized(t *testing.T) {
	a, _ := testApp(t)
	pair, err := a.tokens.IssuePair(context.Background(), 1, "alice")
	require.NoError(t, err)
	r := refreshRouter(a)

	first := postRefresh(r, pair.Refresh)
	require.Equal(t, http.StatusOK, first.Code)

	replay := postRefresh(r, pair.Refresh)
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
	assert.Contains(t, replay.Body.String(), "invalid or expired token")
}

// brokenDB opens a gorm handle whose every query fails at dial time, without
// any connection attempt at open.
func brokenDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := sql.Open("postgres", "host=127.0.0.1 port=1 user=none dbname=none sslmode=disable")
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.NoError(t, err)
	return db
}

// A failed stats query must surface as 500, not silently read as zero.
func TestChannelStatsSurfacesStorageFailure(t *testing.T) {
	a, _ := testApp(t)
	a.db = brokenDB(t)
	pair, err := a.tokens.IssuePair(context.Background(), 1, "alice")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/v1/dashboard/stats", a.requireAuth(), a.channelStats)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "stats query failed")
}
