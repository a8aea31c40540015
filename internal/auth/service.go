package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/JungWooHyub/le-feu-sub000/internal/shared"
)

// Service resolves a bearer credential to an actor by delegating to the
// external token verifier and profile store.
type Service struct {
	verifier TokenVerifier
	profiles ProfileStore
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(verifier TokenVerifier, profiles ProfileStore, logger *slog.Logger) *Service {
	return &Service{verifier: verifier, profiles: profiles, logger: logger}
}

// Authenticate turns an Authorization header value into an actor.
//
// Verifier failures collapse into shared.ErrUnauthenticated regardless of
// whether the token was malformed, expired or revoked; callers must not be
// able to probe the difference. A verified subject with no profile maps to
// shared.ErrProfileNotFound, a legitimate state mid-registration.
func (s *Service) Authenticate(ctx context.Context, authorization string) (*shared.Actor, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return nil, shared.ErrUnauthenticated
	}

	subject, err := s.verifier.Verify(ctx, token)
	if err != nil || subject == "" {
		if err != nil && s.logger != nil {
			s.logger.Debug("token verification failed", slog.Any("error", err))
		}
		return nil, shared.ErrUnauthenticated
	}

	profile, err := s.profiles.GetProfile(ctx, subject)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrProfileNotFound) {
			return nil, shared.ErrProfileNotFound
		}
		if s.logger != nil {
			s.logger.Error("profile lookup failed", slog.String("subject", subject), slog.Any("error", err))
		}
		// Timeouts and store faults must be indistinguishable from a
		// rejected lookup through this interface.
		return nil, shared.ErrProfileNotFound
	}

	return &shared.Actor{
		ID:         profile.ID,
		Role:       profile.Role,
		IsVerified: profile.IsVerified,
		Metadata:   profile.Metadata,
	}, nil
}

func bearerToken(authorization string) (string, bool) {
	const prefix = "Bearer "
	if len(authorization) <= len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(authorization[len(prefix):])
	return token, token != ""
}
