package middleware

// identity.go exposes the staff identity stored by JWTAuth to handlers and
// to the other middleware in this package.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Identity is the authenticated staff member of a request.
type Identity struct {
	ID       uint64
	Username string
	Role     string
}

// Owner returns the id in the string form used as a session owner.
func (i Identity) Owner() string { return strconv.FormatUint(i.ID, 10) }

// CurrentUser returns the identity set by JWTAuth.  ok is false on
// routes that are not behind JWTAuth.
func CurrentUser(c echo.Context) (Identity, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	if !ok {
		return Identity{}, false
	}
	name, _ := c.Get(ctxUsername).(string)
	role, _ := c.Get(ctxRole).(string)
	return Identity{ID: id, Username: name, Role: role}, true
}

// userKey identifies the caller for rate limiting: the staff id when
// authenticated, the client IP otherwise.
func userKey(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return "user:" + u.Owner()
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
