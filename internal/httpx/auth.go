package httpx

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cloudkitchen/internal/redisx"
)

// AdminAuth issues expiring session tokens on login and validates them
// on every admin mutation. Tokens live in Redis, never on the client
// beyond the opaque value itself.
type AdminAuth struct {
	Redis    *redis.Client
	Password string
}

func (a *AdminAuth) login(w http.ResponseWriter, r *http.Request) {
	if a.Password == "" {
		writeError(w, http.StatusServiceUnavailable, "admin login disabled: no password configured")
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.Password)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token := uuid.NewString()
	key := fmt.Sprintf(redisx.KeyAdminSession, token)
	if err := a.Redis.Set(r.Context(), key, "1", redisx.TTLAdminSession).Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(redisx.TTLAdminSession.Seconds()),
	})
}

func (a *AdminAuth) logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		key := fmt.Sprintf(redisx.KeyAdminSession, token)
		_ = a.Redis.Del(r.Context(), key).Err()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		key := fmt.Sprintf(redisx.KeyAdminSession, token)
		ok, err := redisx.Exists(r.Context(), a.Redis, key)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "session check failed")
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "session expired or invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
