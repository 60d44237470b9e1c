package service

import (
	"context"
	"errors"
	"log/slog"

	"folio/internal/access"
	"folio/internal/auth"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"
)

// AuthService bridges the external OAuth provider to local sessions.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	revoker    auth.Revoker
	authorizer access.Authorizer
}

// SignInInput is the provider profile received on the sign-in callback.
type SignInInput struct {
	Email      string
	Name       string
	AvatarURL  string
	Provider   string
	ProviderID string
}

// SignInResult carries the new token and the session it encodes.
type SignInResult struct {
	Token   string        `json:"token"`
	Session *auth.Session `json:"session"`
}

// NewAuthService wires the sign-in bridge. revoker and authorizer may be nil.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenManager,
	revoker auth.Revoker,
	authorizer access.Authorizer,
) *AuthService {
	return &AuthService{users: users, tokens: tokens, revoker: revoker, authorizer: authorizer}
}

// SignIn stores the profile and issues a session token. Unlike session
// reads, a failed user sync fails the sign-in.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*SignInResult, error) {
	if in.Email == "" {
		return nil, models.NewValidationError("Email is required")
	}

	user, err := s.users.UpsertByEmail(ctx, &models.User{
		Email:      in.Email,
		Name:       in.Name,
		AvatarURL:  in.AvatarURL,
		Provider:   in.Provider,
		ProviderID: in.ProviderID,
	})
	if err != nil {
		return nil, err
	}

	token, claims, err := s.tokens.Issue(auth.Identity{
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	session := auth.SessionFromClaims(claims)
	id := user.ID
	session.UserID = &id
	session.IsAdmin = s.canModerate(ctx, session.Email)
	return &SignInResult{Token: token, Session: session}, nil
}

// ResolveSession verifies raw and enriches the session with the stored
// user id. A failed user lookup is logged and the session still returned.
func (s *AuthService) ResolveSession(ctx context.Context, raw string) (*auth.Session, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			observability.Logger.WarnContext(ctx, "revocation check failed",
				slog.String("error", err.Error()))
		} else if revoked {
			return nil, auth.ErrInvalidToken
		}
	}

	session := auth.SessionFromClaims(claims)
	user, err := s.users.GetByEmail(ctx, session.Email)
	switch {
	case err == nil:
		id := user.ID
		session.UserID = &id
		if user.Name != "" {
			session.Name = user.Name
		}
		if user.AvatarURL != "" {
			session.AvatarURL = user.AvatarURL
		}
	case models.IsNotFound(err):
	default:
		observability.Logger.WarnContext(ctx, "session user lookup failed",
			slog.String("error", err.Error()))
	}
	session.IsAdmin = s.canModerate(ctx, session.Email)
	return session, nil
}

// SignOut revokes the session's token. Without a revocation store the
// token stays valid until it expires and ErrRevocationUnavailable is returned.
func (s *AuthService) SignOut(ctx context.Context, session *auth.Session) error {
	if session == nil {
		return models.NewAuthRequiredError("Authentication required")
	}
	if s.revoker == nil {
		return auth.ErrRevocationUnavailable
	}
	if err := s.revoker.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		if errors.Is(err, auth.ErrRevocationUnavailable) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) canModerate(ctx context.Context, email string) bool {
	return s.authorizer != nil && s.authorizer.CanModerate(ctx, email)
}
