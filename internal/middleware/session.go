package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lumierespirituelle.fr/storefront/internal/logging"
	"lumierespirituelle.fr/storefront/internal/modal"
)

const (
	sessionCookieName = "LUMIERE_SESSION"
	sessionTTL        = 30 * 24 * time.Hour
)

// SessionData is persisted in a signed cookie.
type SessionData struct {
	ID        string        `json:"id"`
	Modal     modal.Session `json:"modal"`
	CSRFToken string        `json:"csrf,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// SetModal stores the modal state, marking the session dirty only on change.
func (s *SessionData) SetModal(m modal.Session) {
	if s.Modal == m {
		return
	}
	s.Modal = m
	s.MarkDirty()
}

// Sessions signs and verifies session cookies.
type Sessions struct {
	key    []byte
	secure bool
}

// NewSessions returns a cookie codec. An empty key yields a process-ephemeral
// one, which invalidates sessions on restart.
func NewSessions(key string, secure bool, logger *zap.Logger) *Sessions {
	s := &Sessions{key: []byte(key), secure: secure}
	if key == "" {
		s.key = make([]byte, 32)
		if _, err := rand.Read(s.key); err != nil {
			logging.OrNop(logger).Error("session: generate signing key", zap.Error(err))
		}
		logging.OrNop(logger).Warn("session: using ephemeral signing key; set STOREFRONT_SESSION_SIGNING_KEY")
	}
	return s
}

// Secure reports whether cookies carry the Secure attribute.
func (s *Sessions) Secure() bool { return s.secure }

// Middleware loads or initializes a session and stores it in request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := s.read(r)
		if sd.ID == "" {
			sd.ID = uuid.NewString()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		rw := NewResponseRecorder(w)
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				s.write(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// If nothing was written yet (e.g., HEAD), persist cookie now
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			s.write(w, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if sd, ok := r.Context().Value(ctxKeySession).(*SessionData); ok {
		return sd
	}
	return &SessionData{}
}

func (s *Sessions) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return mac.Sum(nil)
}

// read parses and verifies the session cookie
func (s *Sessions) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	payloadPart, sigPart, ok := strings.Cut(c.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return &SessionData{}, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil || !hmac.Equal(sig, s.sign(payload)) {
		logging.FromContext(r.Context()).Debug("session: bad signature")
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payload, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

// Encode returns the signed cookie value for sd.
func (s *Sessions) Encode(sd *SessionData) string {
	b, _ := json.Marshal(sd)
	return base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(s.sign(b))
}

func (s *Sessions) write(w http.ResponseWriter, sd *SessionData) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.Encode(sd),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}
