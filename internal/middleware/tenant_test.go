package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shDavlatbek/bmsb/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.School{}))
	return db
}

func seedSchool(t *testing.T, db *gorm.DB, domain string, active bool) *model.School {
	t.Helper()
	school := &model.School{Name: domain, Domain: domain}
	school.IsActive = active
	require.NoError(t, db.Create(school).Error)
	return school
}

func TestResolverKey(t *testing.T) {
	r := NewTenantResolver(nil)

	cases := []struct {
		name   string
		header string
		host   string
		want   string
	}{
		{"header wins", "school42", "other.example.com", "school42"},
		{"header trimmed and lowered", "  School42 ", "example.com", "school42"},
		{"subdomain", "", "school42.example.com:8080", "school42"},
		{"bare domain", "", "example.com", ""},
		{"single label", "", "localhost:8080", ""},
		{"localhost subdomain", "", "school42.localhost:8080", "school42"},
		{"reserved www", "", "www.example.com", ""},
		{"reserved api", "", "api.example.com", ""},
		{"reserved admin", "", "admin.example.com", ""},
		{"reserved cdn", "", "cdn.example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Key(tc.header, tc.host))
		})
	}
}

func serve(t *testing.T, r *TenantResolver, req *http.Request) (*httptest.ResponseRecorder, *model.School) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()

	var resolved *model.School
	h := r.Middleware()(func(c echo.Context) error {
		resolved = SchoolFromContext(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec, resolved
}

func TestMiddlewareResolvesSchool(t *testing.T) {
	db := newTestDB(t)
	school := seedSchool(t, db, "alpha", true)
	r := NewTenantResolver(db)

	req := httptest.NewRequest(http.MethodGet, "/api/banners", nil)
	req.Host = "alpha.example.com"
	rec, resolved := serve(t, r, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resolved)
	assert.Equal(t, school.ID, resolved.ID)
}

func TestMiddlewareHeaderBeatsHost(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db, "alpha", true)
	beta := seedSchool(t, db, "beta", true)
	r := NewTenantResolver(db)

	req := httptest.NewRequest(http.MethodGet, "/api/banners", nil)
	req.Host = "alpha.example.com"
	req.Header.Set(SchoolHeader, "beta")
	rec, resolved := serve(t, r, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resolved)
	assert.Equal(t, beta.ID, resolved.ID)
}

func TestMiddlewareUnknownSchool(t *testing.T) {
	db := newTestDB(t)
	r := NewTenantResolver(db)

	req := httptest.NewRequest(http.MethodGet, "/api/banners", nil)
	req.Host = "ghost.example.com"
	rec, resolved := serve(t, r, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, resolved)
}

func TestMiddlewareInactiveSchool(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db, "sleepy", false)
	r := NewTenantResolver(db)

	// An inactive tenant is indistinguishable from a missing one
	req := httptest.NewRequest(http.MethodGet, "/api/banners", nil)
	req.Host = "sleepy.example.com"
	rec, resolved := serve(t, r, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, resolved)
}

func TestMiddlewareGlobalMode(t *testing.T) {
	db := newTestDB(t)
	r := NewTenantResolver(db)

	// No subdomain, no header: the request proceeds with no tenant
	req := httptest.NewRequest(http.MethodGet, "/api/banners", nil)
	req.Host = "example.com"
	rec, resolved := serve(t, r, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, resolved)
}

func TestMiddlewareExemptPaths(t *testing.T) {
	db := newTestDB(t)
	r := NewTenantResolver(db)

	// Exempt prefixes skip resolution even with an unknown subdomain
	for _, path := range []string{"/health", "/metrics", "/auth/login", "/admin/schools", "/api/check-school"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Host = "ghost.example.com"
		rec, resolved := serve(t, r, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Nil(t, resolved, path)
	}
}
