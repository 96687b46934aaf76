package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/ledgerfolio/src/logger"
)

const csrfCookieName = "_csrf_token"

// GetCSRFToken issues a signed random token as both a cookie and a response
// value; mutating requests must echo it in the X-CSRF-Token header (double
// submit). The HMAC signature ties the token to the server's CSRF key, so a
// cookie injected by a sibling subdomain cannot pass the check.
func GetCSRFToken(key []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := generateRandomToken()
		if err != nil {
			logger.L.Error("Failed to generate CSRF token", "error", err)
			http.Error(w, "Failed to generate CSRF token", http.StatusInternalServerError)
			return
		}
		signed := token + "." + signCSRFToken(key, token)

		http.SetCookie(w, &http.Cookie{
			Name:     csrfCookieName,
			Value:    signed,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
			HttpOnly: true,
			Secure:   false, // behind TLS termination in production
			MaxAge:   3600,
		})

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-CSRF-Token", signed)
		json.NewEncoder(w).Encode(map[string]string{"csrfToken": signed})
	}
}

// CSRFMiddleware enforces the double-submit check on mutating methods: the
// X-CSRF-Token header must match the CSRF cookie and carry a valid signature.
// Safe methods pass through.
func CSRFMiddleware(key []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if headerToken != "" && err == nil &&
				hmac.Equal([]byte(headerToken), []byte(cookie.Value)) &&
				verifyCSRFToken(key, headerToken) {
				next.ServeHTTP(w, r)
				return
			}

			logger.L.Warn("CSRF token validation failed",
				"method", r.Method, "path", r.URL.Path, "hasHeader", headerToken != "", "cookieErr", err)
			http.Error(w, "CSRF token validation failed", http.StatusForbidden)
		})
	}
}

func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func signCSRFToken(key []byte, token string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verifyCSRFToken checks a "token.signature" value against the key. The token
// part is std base64, which never contains a dot, so the split is unambiguous.
func verifyCSRFToken(key []byte, signed string) bool {
	token, sig, found := strings.Cut(signed, ".")
	if !found {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(signCSRFToken(key, token)))
}
