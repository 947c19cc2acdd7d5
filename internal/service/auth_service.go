package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/absensi-dev/absensi-api/pkg/config"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

// AuthService validates admin credentials and maintains the per-session
// failed-attempt budget. All state lives on the session; there is no
// persistent audit trail of attempts.
type AuthService struct {
	username     string
	passwordHash []byte
	tries        int
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAuthService constructs an AuthService. The configured password is
// hashed once at startup so login comparisons are constant-time.
func NewAuthService(cfg config.AdminConfig, validate *validator.Validate, logger *zap.Logger) (*AuthService, error) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AuthService{
		username:     cfg.Username,
		passwordHash: hash,
		tries:        cfg.LoginTries,
		validator:    validate,
		logger:       logger,
	}, nil
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginStatus reports the outcome of a can_login probe.
type LoginStatus struct {
	CanLogin bool `json:"can_login"`
	Banned   bool `json:"banned"`
}

// Login validates credentials against configuration. On success the session
// becomes an admin session and the retry budget resets; on failure the
// budget shrinks and hitting zero bans the session for its lifetime.
// Returns the remaining tries alongside any error so the caller can report
// them. The caller persists the mutated session.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, req LoginRequest) (int, error) {
	if sess.Admin {
		return sess.TriesLeft, nil
	}
	if sess.Banned || sess.TriesLeft <= 0 {
		return 0, appErrors.ErrBanned
	}
	if err := s.validator.Struct(req); err != nil {
		return sess.TriesLeft, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)) == nil
	if userOK && passOK {
		sess.Admin = true
		sess.Banned = false
		sess.TriesLeft = s.tries
		s.logger.Info("admin login", zap.String("session", sess.Token))
		return sess.TriesLeft, nil
	}

	sess.TriesLeft--
	if sess.TriesLeft <= 0 {
		sess.TriesLeft = 0
		sess.Banned = true
		s.logger.Warn("session banned after failed logins", zap.String("session", sess.Token))
		return 0, appErrors.ErrBanned
	}
	return sess.TriesLeft, appErrors.ErrBadCredentials
}

// CanLogin reports whether further login attempts are allowed.
func (s *AuthService) CanLogin(ctx context.Context, sess *session.Session) LoginStatus {
	banned := sess.Banned || sess.TriesLeft <= 0
	return LoginStatus{CanLogin: !banned, Banned: banned}
}
