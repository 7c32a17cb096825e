package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/google/uuid"
)

// dummyHash is verified against when the username is unknown so both
// failure paths cost one hash verification.
var dummyHash = sync.OnceValue(func() string {
	h, err := credentials.Hash("taskkeeper-dummy-password")
	if err != nil {
		panic(err)
	}
	return h
})

// userFinder is the part of UserService the session layer depends on.
type userFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Session is the result of a successful login.
type Session struct {
	Identity  models.Identity
	Token     string
	ExpiresAt time.Time
}

// SessionService issues, resolves and revokes login sessions.
type SessionService struct {
	users     userFinder
	registry  *auth.Registry
	secretKey []byte
	validity  time.Duration
	log       logging.Logger
	now       func() time.Time
}

// NewSessionService constructs a SessionService. Sessions live for validity
// unless revoked by Logout.
func NewSessionService(users userFinder, registry *auth.Registry, secretKey string, validity time.Duration, l logging.Logger) *SessionService {
	return &SessionService{
		users:     users,
		registry:  registry,
		secretKey: []byte(secretKey),
		validity:  validity,
		log:       l.With("module", "sessions"),
		now:       time.Now,
	}
}

// Login checks the credentials and opens a session. Unknown usernames and
// wrong passwords both yield common.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			credentials.Verify(password, dummyHash())
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !credentials.Verify(password, user.PasswordHash) || !user.SessionEligible() {
		return nil, common.ErrInvalidCredentials
	}
	if credentials.NeedsRehash(user.PasswordHash) {
		s.log.Warn(ctx, "password hash uses outdated parameters", "user_id", user.ID)
	}

	return s.open(ctx, user)
}

func (s *SessionService) open(ctx context.Context, p models.Principal) (*Session, error) {
	sessionID := uuid.NewString()
	expiresAt := s.now().Add(s.validity)

	token, err := auth.GenerateToken(p.PrincipalID(), sessionID, s.secretKey, expiresAt)
	if err != nil {
		return nil, err
	}
	s.registry.Add(sessionID, p.PrincipalID(), expiresAt)

	s.log.Info(ctx, "session opened", "user_id", p.PrincipalID())
	return &Session{
		Identity:  models.Authenticated(p.PrincipalID()),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve maps a session token to an identity. Any failure, including a
// storage error while checking the user, degrades to Anonymous.
func (s *SessionService) Resolve(ctx context.Context, token string) models.Identity {
	if token == "" {
		return models.Anonymous()
	}

	claims, err := auth.ParseToken(token, s.secretKey)
	if err != nil {
		return models.Anonymous()
	}

	userID, ok := s.registry.Lookup(claims.SessionID())
	if !ok || userID != claims.UserID {
		return models.Anonymous()
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "resolve session", "error", err)
		}
		return models.Anonymous()
	}
	if !user.SessionEligible() {
		return models.Anonymous()
	}

	return models.Authenticated(user.ID)
}

// Logout revokes the session behind token. Unknown, expired or garbage
// tokens are ignored.
func (s *SessionService) Logout(ctx context.Context, token string) {
	claims, err := auth.ParseToken(token, s.secretKey)
	if err != nil {
		return
	}
	s.registry.Remove(claims.SessionID())
	s.log.Info(ctx, "session closed", "user_id", claims.UserID)
}

// RequireAuthenticated returns the user id of an authenticated identity and
// common.ErrUnauthenticated otherwise.
func (s *SessionService) RequireAuthenticated(id models.Identity) (int64, error) {
	return RequireAuthenticated(id)
}

// RequireAuthenticated is the gate every owner-scoped operation passes.
func RequireAuthenticated(id models.Identity) (int64, error) {
	if !id.IsAuthenticated() || id.UserID() <= 0 {
		return 0, common.ErrUnauthenticated
	}
	return id.UserID(), nil
}
