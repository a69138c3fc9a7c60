package middleware

import (
	"encoding/json"
	"net/http"
	"regexp"

	"go.uber.org/zap"
)

// ValidationMiddleware performs basic input validation ahead of the route handler.
type ValidationMiddleware struct {
	logger *zap.Logger
}

func NewValidationMiddleware(logger *zap.Logger) *ValidationMiddleware {
	return &ValidationMiddleware{logger: logger}
}

var sessionIDRe = regexp.MustCompile(`^[A-Za-z0-9:_\-\.]{1,128}$`)

func (vm *ValidationMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/v1/route" {
			if r.Header.Get("Content-Type") != "" && r.Header.Get("Content-Type") != "application/json" {
				vm.sendBadRequest(w, "Content-Type must be application/json")
				return
			}
			if sid := r.URL.Query().Get("session_id"); sid != "" && !sessionIDRe.MatchString(sid) {
				vm.sendBadRequest(w, "invalid session_id format")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (vm *ValidationMiddleware) sendBadRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
