package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

// authenticateRequest validates a bearer token and returns the user it was
// issued to.
func (s *Server) authenticateRequest(_ context.Context, authHeader string) (string, error) {
	if authHeader == "" {
		return "", huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.tokens.VerifyAccessToken(parts[1])
	if err != nil {
		return "", huma.Error401Unauthorized("Invalid or expired token")
	}

	return claims.UserID(), nil
}

// serviceError prepares a service failure for rendering. Domain errors
// keep their code; anything else becomes an internal error. Server-side
// failures are logged with their cause because the response never carries it.
func (s *Server) serviceError(err error, msg string, attrs ...any) error {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		s.logger.Error(msg, append(attrs, "error", err)...)
		return domainerrors.Internal(msg)
	}
	if domainErr.HTTPStatus() >= http.StatusInternalServerError {
		s.logger.Error(msg, append(attrs, "error", err)...)
	}
	return domainErr
}
