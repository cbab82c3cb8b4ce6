// Package auth manages the operator session of the CLI: the bearer token
// issued by the board backend and the server it belongs to.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/garageboard/internal/client/storage"
)

var (
	// ErrNotLoggedIn is returned when no session is stored.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionExpired is returned when the stored token has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidToken is returned for tokens that are not well-formed JWTs.
	ErrInvalidToken = errors.New("invalid operator token")
)

// Claims is the client's view of an operator token. The signature is
// checked by the server only.
type Claims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// Session is the stored operator session.
type Session struct {
	ExpiresAt time.Time // нулевое значение означает бессрочный токен
	Operator  string
	Token     string
	ServerURL string
}

// Expired reports whether the session token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Service предоставляет функции работы с сессией оператора
type Service struct {
	store  storage.AuthStorage
	logger *slog.Logger
	now    func() time.Time
}

// NewService создает новый сервис сессий
func NewService(store storage.AuthStorage, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ParseToken reads operator and expiry from token without verifying the
// signature.
func ParseToken(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Operator == "" {
		claims.Operator = claims.Subject
	}
	if claims.Operator == "" {
		return nil, fmt.Errorf("%w: token has no operator", ErrInvalidToken)
	}
	return claims, nil
}

// Login validates token locally and stores it as the current session.
func (s *Service) Login(ctx context.Context, serverURL, token string) (*Session, error) {
	claims, err := ParseToken(token)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Operator:  claims.Operator,
		Token:     strings.TrimSpace(token),
		ServerURL: strings.TrimRight(serverURL, "/"),
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	if session.Expired(s.now()) {
		return nil, ErrSessionExpired
	}

	data := &storage.AuthData{
		Operator:    session.Operator,
		AccessToken: session.Token,
		ServerURL:   session.ServerURL,
	}
	if !session.ExpiresAt.IsZero() {
		data.ExpiresAt = session.ExpiresAt.Unix()
	}
	if err := s.store.SaveAuth(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Operator logged in", "operator", session.Operator, "server", session.ServerURL)
	return session, nil
}

// Current returns the stored session. It returns ErrNotLoggedIn when there
// is none and ErrSessionExpired together with the session when it expired.
func (s *Service) Current(ctx context.Context) (*Session, error) {
	data, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session := &Session{
		Operator:  data.Operator,
		Token:     data.AccessToken,
		ServerURL: data.ServerURL,
	}
	if data.ExpiresAt > 0 {
		session.ExpiresAt = time.Unix(data.ExpiresAt, 0)
	}
	if session.Expired(s.now()) {
		return session, ErrSessionExpired
	}
	return session, nil
}

// Logout removes the stored session. Logging out without a session is
// not an error.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	s.logger.Info("Operator logged out")
	return nil
}
