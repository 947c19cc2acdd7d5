package middleware

import (
	"context"
	"errors"
	"net"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/absensi-dev/absensi-api/pkg/config"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/response"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

// ContextSessionKey is the gin context key storing the caller's session.
const ContextSessionKey = "currentSession"

type identifier interface {
	Identify(ctx context.Context, sess *session.Session, clientIP string) error
}

// Session attaches the server-side session to every request, creating one
// (and issuing the cookie) on first contact, and resolves the caller's
// device identity into it. The session is persisted after the handler runs
// so handler mutations and the sliding TTL are covered on every exit path.
func Session(store session.Store, ids identifier, cfg config.SessionConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var sess *session.Session
		if token, err := c.Cookie(cfg.CookieName); err == nil && token != "" {
			sess, err = store.Get(ctx, token)
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "session load failed"))
				c.Abort()
				return
			}
		}
		if sess == nil {
			created, err := store.New(ctx)
			if err != nil {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "session create failed"))
				c.Abort()
				return
			}
			sess = created
			c.SetCookie(cfg.CookieName, sess.Token, int(cfg.TTL.Seconds()), "/", "", false, true)
		}

		if err := ids.Identify(ctx, sess, PeerIP(c)); err != nil {
			// Persist what we have so a banned counter or partial state
			// survives even a failed identification.
			if saveErr := store.Save(ctx, sess); saveErr != nil {
				logger.Warn("session save failed", zap.Error(saveErr))
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Next()

		if err := store.Save(ctx, sess); err != nil {
			logger.Warn("session save failed", zap.Error(err))
		}
	}
}

// SessionFrom returns the session attached to the request.
func SessionFrom(c *gin.Context) *session.Session {
	if v, ok := c.Get(ContextSessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// PeerIP returns the immediate socket peer address. Forwarded headers are
// deliberately ignored: the localhost admin gate must not be spoofable by
// a client-supplied X-Forwarded-For.
func PeerIP(c *gin.Context) string {
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
