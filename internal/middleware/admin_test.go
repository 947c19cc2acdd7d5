package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/absensi-dev/absensi-api/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRequest(remoteAddr string, sess *session.Session) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	c.Request.RemoteAddr = remoteAddr
	if sess != nil {
		c.Set(ContextSessionKey, sess)
	}
	return c, w
}

func TestLocalOnlyAllowsLoopback(t *testing.T) {
	c, w := testRequest("127.0.0.1:54321", nil)
	LocalOnly(true)(c)

	assert.False(t, c.IsAborted())
	assert.NotEqual(t, http.StatusForbidden, w.Code)
}

func TestLocalOnlyRejectsRemotePeer(t *testing.T) {
	c, w := testRequest("192.168.1.10:54321", nil)
	LocalOnly(true)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLocalOnlyIgnoresForwardedHeaders(t *testing.T) {
	c, w := testRequest("192.168.1.10:54321", nil)
	c.Request.Header.Set("X-Forwarded-For", "127.0.0.1")
	LocalOnly(true)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLocalOnlyDisabled(t *testing.T) {
	c, _ := testRequest("192.168.1.10:54321", nil)
	LocalOnly(false)(c)

	assert.False(t, c.IsAborted())
}

func TestAdminRequiresAdminSession(t *testing.T) {
	c, w := testRequest("127.0.0.1:54321", &session.Session{Token: "tok"})
	Admin()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAllowsAdminSession(t *testing.T) {
	c, _ := testRequest("127.0.0.1:54321", &session.Session{Token: "tok", Admin: true})
	Admin()(c)

	assert.False(t, c.IsAborted())
}

func TestPeerIP(t *testing.T) {
	c, _ := testRequest("10.1.2.3:9999", nil)
	assert.Equal(t, "10.1.2.3", PeerIP(c))

	c, _ = testRequest("[::1]:9999", nil)
	assert.Equal(t, "::1", PeerIP(c))
}
