package system

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-notifier/cache"
	"task-notifier/component"
)

func jsonRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Accept", "application/json")
	return req
}

func TestVerifyEmailError_JSON(t *testing.T) {
	tests := []struct {
		reason                        string
		register, login, loginPrimary bool
	}{
		{"invalid", true, true, false},
		{"expired", true, true, false},
		{"already-verified", false, true, true},
		{"user-not-found", true, false, false},
		{"server", false, false, false},
		{"", false, false, false},
		{"something-else", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			h, _ := newTestHandler(t)

			rec := httptest.NewRecorder()
			h.VerifyEmailError(rec, jsonRequest("GET", "/verify-email/error?reason="+tt.reason))

			require.Equal(t, http.StatusOK, rec.Code)
			var view component.VerificationErrorView
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
			assert.NotEmpty(t, view.Message)
			assert.Equal(t, tt.register, view.ShowRegister)
			assert.Equal(t, tt.login, view.ShowLogin)
			assert.Equal(t, tt.loginPrimary, view.LoginPrimary)
			assert.Equal(t, "/", view.HomePath)
		})
	}
}

func TestVerifyEmailError_HTML(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.VerifyEmailError(rec, httptest.NewRequest("GET", "/verify-email/error?reason=already-verified", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "already been verified")
	assert.Contains(t, body, `class="button primary" href="/login"`)
	assert.NotContains(t, body, `href="/register"`)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestThankYou(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ThankYou(rec, httptest.NewRequest("GET", "/register/thank-you", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thank you for registering!")
	assert.Contains(t, rec.Body.String(), `href="/login"`)
}

var testAnnouncement = component.Announcement{ID: "v2", Title: "What's new", Body: "Tasks now have **due dates**."}

func getAnnouncement(t *testing.T, h *Handler) component.AnnouncementView {
	t.Helper()
	rec := httptest.NewRecorder()
	h.GetAnnouncement(rec, withUser(jsonRequest("GET", "/announcement"), 1))
	require.Equal(t, http.StatusOK, rec.Code)

	var view component.AnnouncementView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestGetAnnouncement_OpenUntilDismissed(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Announcement = testAnnouncement
	rdb, redisMock := redismock.NewClientMock()
	cache.RedisClient = rdb
	defer func() { cache.RedisClient = nil }()

	key := cache.AnnouncementKey(1, "v2")
	redisMock.ExpectGet(key).RedisNil()
	redisMock.ExpectSet(key, "1", announcementTTL).SetVal("OK")
	redisMock.ExpectGet(key).SetVal("1")

	view := getAnnouncement(t, h)
	assert.True(t, view.Open)
	assert.Contains(t, string(view.BodyHTML), "<strong>due dates</strong>")

	rec := httptest.NewRecorder()
	h.DismissAnnouncement(rec, withUser(httptest.NewRequest("POST", "/announcement/dismiss", nil), 1))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.False(t, getAnnouncement(t, h).Open)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestGetAnnouncement_Disabled(t *testing.T) {
	h, _ := newTestHandler(t)

	view := getAnnouncement(t, h)

	assert.False(t, view.Open)
}

func TestGetAnnouncement_WithoutCacheStaysOpen(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Announcement = testAnnouncement

	assert.True(t, getAnnouncement(t, h).Open)
}

func TestDismissAnnouncement_CacheError(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Announcement = testAnnouncement
	rdb, redisMock := redismock.NewClientMock()
	cache.RedisClient = rdb
	defer func() { cache.RedisClient = nil }()

	redisMock.ExpectSet(cache.AnnouncementKey(1, "v2"), "1", announcementTTL).SetErr(errors.New("connection refused"))

	rec := httptest.NewRecorder()
	h.DismissAnnouncement(rec, withUser(httptest.NewRequest("POST", "/announcement/dismiss", nil), 1))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAnnouncement_Unauthorized(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.GetAnnouncement(rec, httptest.NewRequest("GET", "/announcement", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.DismissAnnouncement(rec, httptest.NewRequest("POST", "/announcement/dismiss", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
