package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// AdminAuth issues and validates admin bearer tokens. The studio has a single
// shared admin password; tokens live only for the process lifetime.
type AdminAuth struct {
	password string

	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewAdminAuth(password string) *AdminAuth {
	return &AdminAuth{
		password: password,
		tokens:   make(map[string]struct{}),
	}
}

// IsValid reports whether the token was issued by Login and not revoked.
func (a *AdminAuth) IsValid(token string) bool {
	if token == "" {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.tokens[token]
	return ok
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login checks the configured password and returns a fresh admin token.
func (a *AdminAuth) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if a.password == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.password)) != 1 {
		log.Debug("admin login rejected")
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}

	token := uuid.NewString()
	a.mu.Lock()
	a.tokens[token] = struct{}{}
	a.mu.Unlock()

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(loginResponse{Token: token}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Logout revokes the token presented in the X-Admin-Token header.
func (a *AdminAuth) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Admin-Token")
	a.mu.Lock()
	delete(a.tokens, token)
	a.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
