package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shDavlatbek/bmsb/internal/apierror"
	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/internal/notify"
	"github.com/shDavlatbek/bmsb/internal/scope"
	"github.com/shDavlatbek/bmsb/pkg/config"
)

// Context keys the middleware layer uses; tests plant values directly
// instead of running the full middleware chain.
const (
	testSchoolKey    = "school"
	testPrincipalKey = "principal"
)

type testEnv struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	e := echo.New()
	e.Validator = apierror.NewValidator()
	return &testEnv{e: e, db: db}
}

func (env *testEnv) newNotifier() *notify.Notifier {
	log := zap.NewNop()
	mailer := notify.NewMailer(&config.EmailConfig{Backend: "console"}, log)
	return notify.NewNotifier(env.db, mailer, log)
}

func (env *testEnv) seedSchool(t *testing.T, domain string) *model.School {
	t.Helper()
	school := &model.School{Name: domain + " school", Domain: domain}
	school.IsActive = true
	require.NoError(t, env.db.Create(school).Error)
	return school
}

// request builds a context the way the middleware chain would have left it:
// resolved school and principal already planted.
func (env *testEnv) request(method, target, body string, school *model.School, pr scope.Principal) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if school != nil {
		c.Set(testSchoolKey, school)
	}
	if pr.UserID != 0 || pr.Superuser {
		c.Set(testPrincipalKey, pr)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

var staffPrincipal = scope.Principal{UserID: 1, Email: "admin@test", Staff: true}
