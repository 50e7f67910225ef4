package middleware

import (
	"net/http"
	"strings"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Trigger asks htmx to dispatch the named client events after the swap.
func Trigger(w http.ResponseWriter, events ...string) {
	if len(events) == 0 {
		return
	}
	if prev := w.Header().Get("HX-Trigger"); prev != "" {
		events = append([]string{prev}, events...)
	}
	w.Header().Set("HX-Trigger", strings.Join(events, ", "))
}
