package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/internal/scope"
	"github.com/shDavlatbek/bmsb/pkg/config"
	"github.com/shDavlatbek/bmsb/pkg/jwtutil"
)

func seedUser(t *testing.T, env *testEnv, email, password string, schoolID *uint, superuser bool) *model.User {
	t.Helper()
	user := &model.User{Email: email, FullName: "Test Admin", SchoolID: schoolID, IsSuperuser: superuser}
	user.IsActive = true
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func TestLoginIssuesSchoolBoundToken(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	seedUser(t, env, "admin@alpha.uz", "secret123", &alpha.ID, false)
	h := NewAuthHandler(env.db)

	c, rec := env.request(http.MethodPost, "/auth/login",
		`{"email":"admin@alpha.uz","password":"secret123"}`, nil, scope.Principal{})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
		User  struct {
			Email        string `json:"email"`
			SchoolID     *uint  `json:"school_id"`
			SchoolDomain string `json:"school_domain"`
		} `json:"user"`
	}
	decode(t, rec, &body)
	require.NotEmpty(t, body.Token)
	assert.Equal(t, "admin@alpha.uz", body.User.Email)
	require.NotNil(t, body.User.SchoolID)
	assert.Equal(t, alpha.ID, *body.User.SchoolID)
	assert.Equal(t, "alpha", body.User.SchoolDomain)

	// The token carries the binding the account has
	claims, err := jwtutil.ValidateToken(body.Token)
	require.NoError(t, err)
	require.NotNil(t, claims.SchoolID)
	assert.Equal(t, alpha.ID, *claims.SchoolID)
	assert.False(t, claims.Superuser)
}

func TestLoginWrongPassword(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	env := newTestEnv(t)
	seedUser(t, env, "admin@alpha.uz", "secret123", nil, false)
	h := NewAuthHandler(env.db)

	c, rec := env.request(http.MethodPost, "/auth/login",
		`{"email":"admin@alpha.uz","password":"wrong"}`, nil, scope.Principal{})
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	env := newTestEnv(t)
	user := seedUser(t, env, "admin@alpha.uz", "secret123", nil, false)
	require.NoError(t, env.db.Model(user).UpdateColumn("is_active", false).Error)
	h := NewAuthHandler(env.db)

	c, rec := env.request(http.MethodPost, "/auth/login",
		`{"email":"admin@alpha.uz","password":"secret123"}`, nil, scope.Principal{})
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	env := newTestEnv(t)
	h := NewAuthHandler(env.db)

	c, rec := env.request(http.MethodPost, "/auth/login",
		`{"email":"ghost@alpha.uz","password":"secret123"}`, nil, scope.Principal{})
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
