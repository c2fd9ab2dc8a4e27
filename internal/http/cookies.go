package httpx

import (
	"net/http"
	"time"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
)

// CookieJar translates cookie transactions into Set-Cookie headers and
// reads the trust cookie set off incoming requests. All trust cookies are
// httpOnly, path=/, SameSite=Strict; Secure follows deployment config.
type CookieJar struct {
	Domain string
	Secure bool
}

// ReadSet collects the trust cookies from the request. Absent cookies read
// as empty strings.
func (j CookieJar) ReadSet(r *http.Request) domainauth.CookieSet {
	var set domainauth.CookieSet
	set.Session = cookieValue(r, domainauth.CookieSession)
	set.User = cookieValue(r, domainauth.CookieUser)
	set.IsAdmin = cookieValue(r, domainauth.CookieIsAdmin)
	set.IsProfessor = cookieValue(r, domainauth.CookieIsProfessor)
	set.HasPlan = cookieValue(r, domainauth.CookieHasPlan)
	return set
}

// Apply emits the transaction's writes in order. The transaction's own
// ordering guarantees the session credential lands last on issuance.
func (j CookieJar) Apply(w http.ResponseWriter, txn domainauth.CookieTxn) {
	for _, write := range txn.Writes {
		http.SetCookie(w, j.build(write))
	}
}

func (j CookieJar) build(write domainauth.CookieWrite) *http.Cookie {
	c := &http.Cookie{
		Name:     write.Name,
		Value:    write.Value,
		Path:     "/",
		Domain:   j.Domain,
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if write.MaxAge > 0 {
		c.MaxAge = int(write.MaxAge / time.Second)
		c.Expires = time.Now().Add(write.MaxAge)
	} else {
		c.Value = ""
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0).UTC()
	}
	return c
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
