package middleware

import (
	"net/http"

	"golang.org/x/text/language"
)

// ContentLanguage advertises the single configured locale on every response.
func ContentLanguage(tag language.Tag) func(http.Handler) http.Handler {
	lang := tag.String()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r)
		})
	}
}
