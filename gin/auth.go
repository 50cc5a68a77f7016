package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DBall8/enotes/auth"
	"github.com/DBall8/enotes/errors"
)

// AuthHandler serves login, logout, registration and password changes, and
// issues the session cookie the other routes authenticate with.
type AuthHandler struct {
	Users   *auth.UserService
	Encoder auth.TokenEncoder
}

func (h *AuthHandler) RegisterRoutes(router *gin.Engine, authenticator *Authenticator) {
	router.POST("/login", h.Login)
	router.POST("/newuser", h.NewUser)
	router.POST("/logout", authenticator.RequireLogin, h.Logout)
	router.POST("/changepassword", authenticator.RequireLogin, h.ChangePassword)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var creds credentials
	if err := c.BindJSON(&creds); err != nil {
		abortWithError(c, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err)))
		return
	}

	ok, err := h.Users.Login(creds.Username, creds.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"successful": false})
		return
	}

	if err := h.setSession(c, creds.Username); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"successful": true})
}

func (h *AuthHandler) NewUser(c *gin.Context) {
	var creds credentials
	if err := c.BindJSON(&creds); err != nil {
		abortWithError(c, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err)))
		return
	}

	err := h.Users.Register(creds.Username, creds.Password)
	if err == auth.ErrUserExists {
		c.JSON(http.StatusOK, gin.H{"userAlreadyExists": true})
		return
	} else if err != nil {
		abortWithError(c, err)
		return
	}

	// Registration doubles as the first login.
	if err := h.setSession(c, creds.Username); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userAlreadyExists": false})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"successful": true})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var body struct {
		OldPassword string `json:"oldpassword"`
		NewPassword string `json:"newpassword"`
	}
	if err := c.BindJSON(&body); err != nil {
		abortWithError(c, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err)))
		return
	}

	ok, err := h.Users.ChangePassword(currentUser(c), body.OldPassword, body.NewPassword)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"successful": ok})
}

func (h *AuthHandler) setSession(c *gin.Context, username string) error {
	token, err := h.Encoder.Encode(username)
	if err != nil {
		return errors.New("could not create session", errors.WithCause(err))
	}

	c.SetCookie(SessionCookie, token, int(auth.SessionDuration.Seconds()), "/", "", false, true)
	return nil
}
