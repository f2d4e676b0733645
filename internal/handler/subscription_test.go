package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/internal/scope"
)

func TestSubscribeStampsResolvedSchool(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	h := NewSubscriptionHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	// Anonymous visitor: ownership still comes from the resolved tenant
	c, rec := env.request(http.MethodPost, "/api/subscribe", `{"email":"reader@example.com"}`, alpha, scope.Principal{})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.EmailSubscription
	decode(t, rec, &created)
	require.NotNil(t, created.SchoolID)
	assert.Equal(t, alpha.ID, *created.SchoolID)
}

func TestSubscribeDuplicatePerSchoolConflicts(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	beta := env.seedSchool(t, "beta")
	h := NewSubscriptionHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	c, rec := env.request(http.MethodPost, "/api/subscribe", `{"email":"reader@example.com"}`, alpha, scope.Principal{})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same address, same school: conflict
	c, rec = env.request(http.MethodPost, "/api/subscribe", `{"email":"reader@example.com"}`, alpha, scope.Principal{})
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Same address, different school: fine
	c, rec = env.request(http.MethodPost, "/api/subscribe", `{"email":"reader@example.com"}`, beta, scope.Principal{})
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSubscribeInvalidEmail(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	h := NewSubscriptionHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	c, rec := env.request(http.MethodPost, "/api/subscribe", `{"email":"not-an-email"}`, alpha, scope.Principal{})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envlp struct {
		StatusCode int `json:"status_code"`
		Errors     []struct {
			Error string `json:"error"`
		} `json:"errors"`
	}
	decode(t, rec, &envlp)
	require.Len(t, envlp.Errors, 1)
	assert.Equal(t, "email_email", envlp.Errors[0].Error)
}

func TestContactCreateStampsResolvedSchool(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	h := NewContactHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	c, rec := env.request(http.MethodPost, "/api/contact",
		`{"full_name":"Visitor","phone_number":"+998901234567","message":"hello"}`,
		alpha, scope.Principal{})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.ContactForm
	decode(t, rec, &created)
	require.NotNil(t, created.SchoolID)
	assert.Equal(t, alpha.ID, *created.SchoolID)
}

func TestContactListScopedToTenant(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedSchool(t, "alpha")
	beta := env.seedSchool(t, "beta")
	h := NewContactHandler(env.db, scope.NewPolicy(), http.StatusForbidden)

	mine := &model.ContactForm{FullName: "Mine", PhoneNumber: "1"}
	mine.SchoolID = &alpha.ID
	mine.IsActive = true
	require.NoError(t, env.db.Create(mine).Error)

	theirs := &model.ContactForm{FullName: "Theirs", PhoneNumber: "2"}
	theirs.SchoolID = &beta.ID
	theirs.IsActive = true
	require.NoError(t, env.db.Create(theirs).Error)

	c, rec := env.request(http.MethodGet, "/api/contact", "", alpha, staffPrincipal)
	require.NoError(t, h.List(c))

	var forms []model.ContactForm
	decode(t, rec, &forms)
	require.Len(t, forms, 1)
	assert.Equal(t, "Mine", forms[0].FullName)
}
