package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/internal/scope"
)

func seedNewsCategory(t *testing.T, env *testEnv, schoolID *uint, name string) *model.NewsCategory {
	t.Helper()
	cat := &model.NewsCategory{Name: name}
	cat.SchoolID = schoolID
	cat.IsActive = true
	require.NoError(t, env.db.Create(cat).Error)
	return cat
}

func seedNews(t *testing.T, env *testEnv, schoolID *uint, categoryID uint, title string) *model.News {
	t.Helper()
	n := &model.News{CategoryID: categoryID, Title: title, Content: "body"}
	n.SchoolID = schoolID
	n.IsActive = true
	require.NoError(t, env.db.Create(n).Error)
	return n
}

func newNewsHandler(env *testEnv) *NewsHandler {
	return NewNewsHandler(env.db, scope.NewPolicy(), http.StatusForbidden, env.newNotifier())
}

func TestNewsCreateRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	cat := seedNewsCategory(t, env, &alpha.ID, "Yangiliklar")
	h := newNewsHandler(env)

	c, rec := env.request(http.MethodPost, "/api/news",
		`{"category_id":`+itoa(cat.ID)+`,"title":"School Concert","content":"details"}`,
		alpha, staffPrincipal)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.News
	decode(t, rec, &created)
	assert.Equal(t, "school-concert", created.Slug)
	require.NotNil(t, created.SchoolID)
	assert.Equal(t, alpha.ID, *created.SchoolID)

	// Detail by slug returns the same article
	c, rec = env.request(http.MethodGet, "/api/news/x", "", alpha, scope.Principal{})
	c.SetParamNames("slug")
	c.SetParamValues(created.Slug)
	require.NoError(t, h.Detail(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.News
	decode(t, rec, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "School Concert", got.Title)
}

func TestNewsDetailIncrementsViewCount(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	cat := seedNewsCategory(t, env, &alpha.ID, "Yangiliklar")
	news := seedNews(t, env, &alpha.ID, cat.ID, "Popular Post")
	h := newNewsHandler(env)

	for i := 0; i < 3; i++ {
		c, rec := env.request(http.MethodGet, "/api/news/x", "", alpha, scope.Principal{})
		c.SetParamNames("slug")
		c.SetParamValues(news.Slug)
		require.NoError(t, h.Detail(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var reread model.News
	require.NoError(t, env.db.First(&reread, news.ID).Error)
	assert.Equal(t, uint(3), reread.ViewCount)
}

func TestNewsListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	cat := seedNewsCategory(t, env, &alpha.ID, "Yangiliklar")
	h := newNewsHandler(env)

	first := seedNews(t, env, &alpha.ID, cat.ID, "first")
	second := seedNews(t, env, &alpha.ID, cat.ID, "second")
	// Force distinct timestamps regardless of clock resolution
	require.NoError(t, env.db.Model(first).UpdateColumn("created_at", "2024-01-01 00:00:00").Error)
	require.NoError(t, env.db.Model(second).UpdateColumn("created_at", "2024-06-01 00:00:00").Error)

	c, rec := env.request(http.MethodGet, "/api/news", "", alpha, scope.Principal{})
	require.NoError(t, h.List(c))

	var items []model.News
	decode(t, rec, &items)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Title)
	assert.Equal(t, "first", items[1].Title)
}

func TestNewsCreateForeignCategoryDenied(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	beta := env.seedSchool(t, "beta")
	foreignCat := seedNewsCategory(t, env, &beta.ID, "Theirs")
	h := newNewsHandler(env)

	c, rec := env.request(http.MethodPost, "/api/news",
		`{"category_id":`+itoa(foreignCat.ID)+`,"title":"Sneaky"}`,
		alpha, staffPrincipal)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNewsCrossTenantListIsolation(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	beta := env.seedSchool(t, "beta")
	alphaCat := seedNewsCategory(t, env, &alpha.ID, "Mine")
	betaCat := seedNewsCategory(t, env, &beta.ID, "Theirs")
	seedNews(t, env, &alpha.ID, alphaCat.ID, "mine")
	seedNews(t, env, &beta.ID, betaCat.ID, "theirs")
	h := newNewsHandler(env)

	c, rec := env.request(http.MethodGet, "/api/news", "", alpha, scope.Principal{})
	require.NoError(t, h.List(c))

	var items []model.News
	decode(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "mine", items[0].Title)
}
