package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/internal/scope"
)

func seedMenu(t *testing.T, env *testEnv, schoolID *uint, title string, parentID *uint, active bool) *model.Menu {
	t.Helper()
	m := &model.Menu{Title: title, ParentID: parentID}
	m.SchoolID = schoolID
	m.IsActive = active
	require.NoError(t, env.db.Create(m).Error)
	return m
}

func TestMenuTreeComposition(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t, "alpha")
	h := NewMenuHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	// A has children B and C; B has child D; D is deactivated
	a := seedMenu(t, env, &school.ID, "A", nil, true)
	b := seedMenu(t, env, &school.ID, "B", &a.ID, true)
	seedMenu(t, env, &school.ID, "C", &a.ID, true)
	seedMenu(t, env, &school.ID, "D", &b.ID, false)

	c, rec := env.request(http.MethodGet, "/api/menu", "", school, scope.Principal{})
	require.NoError(t, h.Tree(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var tree []MenuNode
	decode(t, rec, &tree)
	require.Len(t, tree, 1)
	assert.Equal(t, "A", tree[0].Title)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "B", tree[0].Children[0].Title)
	assert.Equal(t, "C", tree[0].Children[1].Title)
	// D is inactive and must not appear anywhere
	assert.Empty(t, tree[0].Children[0].Children)
	assert.Empty(t, tree[0].Children[1].Children)
}

func TestMenuTreeDropsOrphansOfHiddenParents(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t, "alpha")
	h := NewMenuHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	// B is inactive; its active child D must not be promoted to root
	a := seedMenu(t, env, &school.ID, "A", nil, true)
	b := seedMenu(t, env, &school.ID, "B", &a.ID, false)
	seedMenu(t, env, &school.ID, "D", &b.ID, true)

	c, rec := env.request(http.MethodGet, "/api/menu", "", school, scope.Principal{})
	require.NoError(t, h.Tree(c))

	var tree []MenuNode
	decode(t, rec, &tree)
	require.Len(t, tree, 1)
	assert.Equal(t, "A", tree[0].Title)
	assert.Empty(t, tree[0].Children)
}

func TestMenuTreeExcludesOtherSchools(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	beta := env.seedSchool(t, "beta")
	h := NewMenuHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	seedMenu(t, env, &alpha.ID, "Mine", nil, true)
	seedMenu(t, env, &beta.ID, "Theirs", nil, true)

	c, rec := env.request(http.MethodGet, "/api/menu", "", alpha, scope.Principal{})
	require.NoError(t, h.Tree(c))

	var tree []MenuNode
	decode(t, rec, &tree)
	require.Len(t, tree, 1)
	assert.Equal(t, "Mine", tree[0].Title)
}

func TestMenuUpdateRejectsOwnAncestry(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t, "alpha")
	h := NewMenuHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	a := seedMenu(t, env, &school.ID, "A", nil, true)
	b := seedMenu(t, env, &school.ID, "B", &a.ID, true)

	// Re-parenting A under its own descendant B must fail
	c, rec := env.request(http.MethodPut, "/api/menu/1", `{"title":"A","parent_id":`+itoa(b.ID)+`}`, school, staffPrincipal)
	c.SetParamNames("id")
	c.SetParamValues(itoa(a.ID))
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMenuCreateRejectsForeignParent(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	beta := env.seedSchool(t, "beta")
	h := NewMenuHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	foreign := seedMenu(t, env, &beta.ID, "Theirs", nil, true)

	c, rec := env.request(http.MethodPost, "/api/menu", `{"title":"New","parent_id":`+itoa(foreign.ID)+`}`, alpha, staffPrincipal)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMenuDeleteRemovesSubtree(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t, "alpha")
	h := NewMenuHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	a := seedMenu(t, env, &school.ID, "A", nil, true)
	b := seedMenu(t, env, &school.ID, "B", &a.ID, true)
	seedMenu(t, env, &school.ID, "D", &b.ID, true)

	c, rec := env.request(http.MethodDelete, "/api/menu/1", "", school, staffPrincipal)
	c.SetParamNames("id")
	c.SetParamValues(itoa(a.ID))
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.db.Model(&model.Menu{}).Count(&count).Error)
	assert.Zero(t, count)
}
