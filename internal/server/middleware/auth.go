package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/garageboard/internal/server/handlers"
	"github.com/iudanet/garageboard/pkg/api"
)

var (
	errMissingToken = errors.New("missing token")
	errTokenFormat  = errors.New("invalid token format")
)

// bearerToken достает токен из заголовка "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errTokenFormat
	}
	return strings.TrimSpace(token), nil
}

// AuthMiddleware rejects requests without a valid operator token and puts
// the operator name into the request context.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				logger.Warn("Request without usable token", "reason", err, "path", r.URL.Path)
				unauthorized(w, err.Error())
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, token)
			if err != nil {
				logger.Warn("Invalid access token", "error", err, "path", r.URL.Path)
				unauthorized(w, "invalid token")
				return
			}

			logger.Debug("Operator authenticated", "operator", claims.Operator)
			next.ServeHTTP(w, r.WithContext(handlers.WithOperator(r.Context(), claims.Operator)))
		})
	}
}

func unauthorized(w http.ResponseWriter, reason string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="garageboard"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized", Message: reason})
}
