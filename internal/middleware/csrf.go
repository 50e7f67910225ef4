package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

const (
	csrfCookieName = "csrf_token"
	// CSRFHeader carries the token on unsafe requests (set by hx-headers on <body>).
	CSRFHeader = "X-CSRF-Token"
)

// CSRF issues a double-submit cookie tied to the session token and verifies
// that unsafe requests echo it in CSRFHeader. It must run after the session
// middleware.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r)
			token := s.CSRFToken
			if token == "" {
				token = newCSRFToken()
				s.CSRFToken = token
				s.MarkDirty()
			}

			if c, err := r.Cookie(csrfCookieName); err != nil || c.Value != token {
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(24 * time.Hour),
				})
			}

			if !isSafeMethod(r.Method) {
				if hdr := r.Header.Get(CSRFHeader); hdr == "" || hdr != token {
					WriteError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
				if c, err := r.Cookie(csrfCookieName); err != nil || c.Value != token {
					WriteError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFToken returns the token pages embed for htmx requests.
func CSRFToken(r *http.Request) string {
	return GetSession(r).CSRFToken
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
