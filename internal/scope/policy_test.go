package scope

import (
	"path/filepath"
	"testing"

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
	require.NoError(t, db.AutoMigrate(&model.School{}, &model.Banner{}))
	return db
}

func seedSchool(t *testing.T, db *gorm.DB, domain string) *model.School {
	t.Helper()
	school := &model.School{Name: domain, Domain: domain}
	school.IsActive = true
	require.NoError(t, db.Create(school).Error)
	return school
}

func seedBanner(t *testing.T, db *gorm.DB, schoolID *uint, title string, active bool) *model.Banner {
	t.Helper()
	b := &model.Banner{Title: title}
	b.SchoolID = schoolID
	b.IsActive = active
	require.NoError(t, db.Create(b).Error)
	return b
}

func titles(t *testing.T, q *gorm.DB) []string {
	t.Helper()
	var banners []model.Banner
	require.NoError(t, q.Find(&banners).Error)
	out := make([]string, 0, len(banners))
	for _, b := range banners {
		out = append(out, b.Title)
	}
	return out
}

func TestFilterForReadTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	policy := NewPolicy()

	a := seedSchool(t, db, "alpha")
	b := seedSchool(t, db, "beta")
	seedBanner(t, db, &a.ID, "mine", true)
	seedBanner(t, db, &b.ID, "theirs", true)
	seedBanner(t, db, nil, "global", true)

	got := titles(t, policy.FilterForRead(db.Model(&model.Banner{}), a, Principal{}, false))
	assert.ElementsMatch(t, []string{"mine", "global"}, got)
}

func TestFilterForReadGlobalMode(t *testing.T) {
	db := newTestDB(t)
	policy := NewPolicy()

	a := seedSchool(t, db, "alpha")
	seedBanner(t, db, &a.ID, "owned", true)
	seedBanner(t, db, nil, "global", true)

	// No resolved school: the tenant filter is skipped entirely
	got := titles(t, policy.FilterForRead(db.Model(&model.Banner{}), nil, Principal{}, false))
	assert.ElementsMatch(t, []string{"owned", "global"}, got)
}

func TestFilterForReadInactiveDowngrade(t *testing.T) {
	db := newTestDB(t)
	policy := NewPolicy()

	a := seedSchool(t, db, "alpha")
	seedBanner(t, db, &a.ID, "visible", true)
	seedBanner(t, db, &a.ID, "hidden", false)

	staff := Principal{UserID: 1, Staff: true}
	anon := Principal{}

	// Staff asking for inactive rows gets them
	got := titles(t, policy.FilterForRead(db.Model(&model.Banner{}), a, staff, true))
	assert.ElementsMatch(t, []string{"visible", "hidden"}, got)

	// An anonymous request for inactive rows is silently downgraded
	got = titles(t, policy.FilterForRead(db.Model(&model.Banner{}), a, anon, true))
	assert.ElementsMatch(t, []string{"visible"}, got)

	// Staff not asking sees only active rows too
	got = titles(t, policy.FilterForRead(db.Model(&model.Banner{}), a, staff, false))
	assert.ElementsMatch(t, []string{"visible"}, got)
}

func TestFilterForReadAppliedOnce(t *testing.T) {
	db := newTestDB(t)
	policy := NewPolicy()

	a := seedSchool(t, db, "alpha")
	seedBanner(t, db, &a.ID, "mine", true)

	// Composing the filter twice must not duplicate the WHERE clauses
	q := policy.FilterForRead(db.Model(&model.Banner{}), a, Principal{}, false)
	q = policy.FilterForRead(q, a, Principal{}, false)
	assert.ElementsMatch(t, []string{"mine"}, titles(t, q))
}

func TestAssignOwnerStampsResolvedSchool(t *testing.T) {
	policy := NewPolicy()
	school := &model.School{Name: "alpha", Domain: "alpha"}
	school.ID = 7

	// Client-supplied owner is discarded for non-superusers
	other := uint(99)
	banner := &model.Banner{}
	banner.SchoolID = &other
	policy.AssignOwner(banner, school, Principal{UserID: 1, Staff: true})
	require.NotNil(t, banner.SchoolID)
	assert.Equal(t, uint(7), *banner.SchoolID)

	// Global mode clears the owner
	banner.SchoolID = &other
	policy.AssignOwner(banner, nil, Principal{UserID: 1, Staff: true})
	assert.Nil(t, banner.SchoolID)

	// Superusers keep whatever the payload carries
	banner.SchoolID = &other
	policy.AssignOwner(banner, school, Principal{UserID: 1, Superuser: true})
	require.NotNil(t, banner.SchoolID)
	assert.Equal(t, uint(99), *banner.SchoolID)
}

func TestAuthorizeDetailAccess(t *testing.T) {
	policy := NewPolicy()
	alpha := &model.School{Name: "alpha", Domain: "alpha"}
	alpha.ID = 1

	owned := &model.Banner{}
	id := uint(1)
	owned.SchoolID = &id

	foreign := &model.Banner{}
	fid := uint(2)
	foreign.SchoolID = &fid

	global := &model.Banner{}

	// Own and global rows pass, a foreign row is a permission error
	assert.NoError(t, policy.AuthorizeDetailAccess(owned, alpha, Principal{}))
	assert.NoError(t, policy.AuthorizeDetailAccess(global, alpha, Principal{}))
	assert.ErrorIs(t, policy.AuthorizeDetailAccess(foreign, alpha, Principal{}), ErrPermissionDenied)

	// Without a resolved school only superusers reach owned rows
	assert.ErrorIs(t, policy.AuthorizeDetailAccess(owned, nil, Principal{UserID: 1, Staff: true}), ErrPermissionDenied)
	assert.NoError(t, policy.AuthorizeDetailAccess(owned, nil, Principal{UserID: 1, Superuser: true}))
}

func TestShowInactive(t *testing.T) {
	policy := NewPolicy()
	assert.False(t, policy.ShowInactive(true, Principal{}))
	assert.True(t, policy.ShowInactive(true, Principal{UserID: 1, Staff: true}))
	assert.False(t, policy.ShowInactive(false, Principal{UserID: 1, Staff: true}))
}
