package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
)

func TestCookieJar_ReadSet(t *testing.T) {
	jar := CookieJar{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: domainauth.CookieSession, Value: "cred"})
	req.AddCookie(&http.Cookie{Name: domainauth.CookieIsAdmin, Value: "true"})

	set := jar.ReadSet(req)
	assert.Equal(t, "cred", set.Session)
	assert.Equal(t, "true", set.IsAdmin)
	assert.Empty(t, set.User)
	assert.Empty(t, set.IsProfessor)
	assert.Empty(t, set.HasPlan)
}

func TestCookieJar_ApplyWrite(t *testing.T) {
	jar := CookieJar{Domain: "example.com", Secure: true}

	var txn domainauth.CookieTxn
	txn.Set(domainauth.CookieSession, "cred", 2*time.Hour)

	rec := httptest.NewRecorder()
	jar.Apply(rec, txn)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "cred", c.Value)
	assert.Equal(t, "example.com", c.Domain)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int(2*time.Hour/time.Second), c.MaxAge)
}

func TestCookieJar_ApplyClear(t *testing.T) {
	jar := CookieJar{}

	rec := httptest.NewRecorder()
	jar.Apply(rec, domainauth.ClearAllTxn())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, len(domainauth.CookieNames()))
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
		assert.False(t, c.Expires.After(time.Unix(1, 0)))
	}
}
