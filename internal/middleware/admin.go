package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/netid"
	"github.com/absensi-dev/absensi-api/pkg/response"
)

// LocalOnly rejects callers whose socket peer is not loopback. It gates the
// login endpoints and the admin surface when the localhost toggle is on.
func LocalOnly(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if enabled && !netid.IsLoopback(PeerIP(c)) {
			response.Error(c, appErrors.ErrLocalOnly)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Admin requires an admin-authenticated session.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil || !sess.Admin {
			response.Error(c, appErrors.ErrNotAuthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}
