package system

import (
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-notifier/cache"
	"task-notifier/common"
	"task-notifier/storage"
)

var testNow = time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)

var (
	taskCols         = []string{"id", "user_id", "title", "status", "priority", "due_date", "created_at", "updated_at"}
	notificationCols = []string{"id", "user_id", "task_id", "kind", "title", "message", "priority", "read", "created_at"}
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache.RedisClient = nil
	h := NewHandler(storage.NewStore(db), Options{
		Metrics: NewSummaryMetrics(prometheus.NewRegistry()),
		Now:     func() time.Time { return testNow },
	})
	return h, mock
}

func withUser(req *http.Request, userID int) *http.Request {
	return req.WithContext(common.WithUserID(req.Context(), userID))
}

// bundleRows describes what LoadBundle reads from the database.
type bundleRows struct {
	overdue, dueToday [][]driver.Value
	notifications     [][]driver.Value
	welcome           []driver.Value
	counts            [3]int
}

func overdueTask(id int, title string) []driver.Value {
	return []driver.Value{id, 1, title, "todo", "urgent", "2025-06-10", "2025-06-01T00:00:00Z", "2025-06-01T00:00:00Z"}
}

func popupNotification(id int, title string) []driver.Value {
	return []driver.Value{id, 1, 0, "general", title, "body", "high", 0, "2025-06-13T06:00:00Z"}
}

func expectBundle(mock sqlmock.Sqlmock, b bundleRows) {
	rows := func(cols []string, values [][]driver.Value) *sqlmock.Rows {
		r := sqlmock.NewRows(cols)
		for _, v := range values {
			r.AddRow(v...)
		}
		return r
	}
	mock.ExpectQuery("FROM tasks WHERE user_id = \\? AND status != \\? AND due_date != '' AND due_date < \\?").
		WillReturnRows(rows(taskCols, b.overdue))
	mock.ExpectQuery("FROM tasks WHERE user_id = \\? AND status != \\? AND due_date = \\?").
		WillReturnRows(rows(taskCols, b.dueToday))
	mock.ExpectQuery("FROM notifications WHERE user_id = \\? AND read = 0 AND popup_dismissed = 0").
		WillReturnRows(rows(notificationCols, b.notifications))
	welcome := sqlmock.NewRows(notificationCols)
	if b.welcome != nil {
		welcome.AddRow(b.welcome...)
	}
	mock.ExpectQuery("FROM notifications WHERE user_id = \\? AND kind = \\?").WillReturnRows(welcome)
	mock.ExpectQuery("SELECT\\s+\\(SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c"}).AddRow(b.counts[0], b.counts[1], b.counts[2]))
}

func TestHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	h := NewHandler(storage.NewStore(db), Options{})

	mock.ExpectPing()
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
