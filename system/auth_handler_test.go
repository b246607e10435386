package system

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"task-notifier/common"
	"task-notifier/entity"
	"task-notifier/ws"
)

func loginRequest(t *testing.T, username, password string) *http.Request {
	t.Helper()
	body, err := json.Marshal(entity.User{Username: username, Password: password})
	require.NoError(t, err)
	return httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
}

func expectUser(mock sqlmock.Sqlmock, username, password string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	mock.ExpectQuery("SELECT id, password FROM users").
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows([]string{"id", "password"}).AddRow(1, string(hashed)))
}

func TestRegister_Success(t *testing.T) {
	h, mock := newTestHandler(t)
	h.Pool = NewNotificationWorkerPool(nil, nil, 1, nil)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("testuser", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	body, _ := json.Marshal(entity.User{Username: "testuser", Password: "password123"})
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/register", bytes.NewBuffer(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registration successful")
	assert.Contains(t, rec.Body.String(), "/register/thank-you")

	require.Len(t, h.Pool.JobQueue, 1)
	job := <-h.Pool.JobQueue
	assert.Equal(t, 7, job.UserID)
	assert.Equal(t, entity.KindWelcome, job.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/register", strings.NewReader("invalid")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_EmptyUsernameOrPassword(t *testing.T) {
	h, _ := newTestHandler(t)

	body, _ := json.Marshal(entity.User{Username: "   "})
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/register", bytes.NewBuffer(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_Duplicate(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username"))

	body, _ := json.Marshal(entity.User{Username: "testuser", Password: "password123"})
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/register", bytes.NewBuffer(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exist")
}

func TestRegister_DBError(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("disk full"))

	body, _ := json.Marshal(entity.User{Username: "testuser", Password: "password123"})
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/register", bytes.NewBuffer(body)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "DB error")
}

func TestLogin_SuccessWithSummary(t *testing.T) {
	h, mock := newTestHandler(t)
	h.Hub = ws.NewHub(nil)

	expectUser(mock, "testuser", "password123")
	expectBundle(mock, bundleRows{
		overdue: [][]driver.Value{overdueTask(1, "A"), overdueTask(2, "B"), overdueTask(3, "C"), overdueTask(4, "D")},
		welcome: []driver.Value{2, 1, 0, "welcome", "Welcome aboard!", "", "", 0, "2025-06-01T00:00:00Z"},
		counts:  [3]int{0, 4, 0},
	})

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "testuser", "password123"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	userID, err := common.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, userID)

	require.NotNil(t, resp.LoginNotifications)
	assert.Equal(t, "Welcome aboard!", resp.LoginNotifications.Title)
	require.NotNil(t, resp.LoginNotifications.Overdue)
	assert.Len(t, resp.LoginNotifications.Overdue.Items, 3)
	assert.Equal(t, 1, resp.LoginNotifications.Overdue.More)
	assert.True(t, h.Popups.Visible(1))

	require.Len(t, h.Hub.Broadcast, 1)
	push := <-h.Hub.Broadcast
	assert.Contains(t, string(push.Message), `"event":"login_summary"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_NothingPending(t *testing.T) {
	h, mock := newTestHandler(t)

	expectUser(mock, "testuser", "password123")
	expectBundle(mock, bundleRows{counts: [3]int{3, 0, 0}})

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "testuser", "password123"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loginNotifications":null`)
	assert.False(t, h.Popups.Visible(1))
}

func TestLogin_CaughtUpSinceLastLoginHidesSummary(t *testing.T) {
	h, mock := newTestHandler(t)
	h.Hub = ws.NewHub(nil)

	expectUser(mock, "testuser", "password123")
	expectBundle(mock, bundleRows{overdue: [][]driver.Value{overdueTask(1, "File taxes")}, counts: [3]int{0, 1, 0}})
	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "testuser", "password123"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, h.Popups.Visible(1))
	<-h.Hub.Broadcast

	expectUser(mock, "testuser", "password123")
	expectBundle(mock, bundleRows{})
	rec = httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "testuser", "password123"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loginNotifications":null`)
	assert.False(t, h.Popups.Visible(1))
	assert.Empty(t, h.Hub.Broadcast)

	expectBundle(mock, bundleRows{})
	assert.False(t, getSummary(t, h, 1).Visible)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_SummaryFailureDoesNotBlockLogin(t *testing.T) {
	h, mock := newTestHandler(t)

	expectUser(mock, "testuser", "password123")
	mock.ExpectQuery("FROM tasks").WillReturnError(errors.New("database is locked"))

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "testuser", "password123"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")
}

func TestLogin_InvalidPassword(t *testing.T) {
	h, mock := newTestHandler(t)

	expectUser(mock, "testuser", "correct-password")

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "testuser", "wrong-password"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
}

func TestLogin_InvalidUser(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT id, password FROM users").
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "unknown", "password"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_DBError(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT id, password FROM users").
		WithArgs("testuser").
		WillReturnError(errors.New("some DB error"))

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, "testuser", "any"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "DB query error")
}

func TestLogin_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest("POST", "/login", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
