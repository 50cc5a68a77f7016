package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DBall8/enotes/auth"
)

// SessionCookie is the cookie the signed session token lives in.
const SessionCookie = "session"

const userKey = "user"

// Authenticator loads the username out of the session cookie. A missing or
// invalid session is answered with a 200 carrying sessionExpired so the
// client knows to drop its state and re-authenticate, which is a different
// condition from a failed request.
type Authenticator struct {
	Decoder auth.TokenDecoder
}

func (a *Authenticator) RequireLogin(c *gin.Context) {
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		sessionExpired(c)
		return
	}

	username, err := a.Decoder.Decode(token)
	if err != nil || username == "" {
		sessionExpired(c)
		return
	}

	c.Set(userKey, username)
	c.Next()
}

func sessionExpired(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusOK, gin.H{
		"successful":     false,
		"sessionExpired": true,
	})
}

func currentUser(c *gin.Context) string {
	return c.GetString(userKey)
}
