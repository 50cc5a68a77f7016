package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DBall8/enotes"
	"github.com/DBall8/enotes/errors"
	"github.com/DBall8/enotes/notes"
)

// NoteHandler serves the /api routes the client sessions persist through.
type NoteHandler struct {
	Service *notes.Service
}

func (h *NoteHandler) RegisterRoutes(router *gin.Engine, authenticator *Authenticator) {
	api := router.Group("/api", authenticator.RequireLogin)
	api.GET("", h.List)
	api.POST("", h.Create)
	api.PUT("", h.Update)
	api.DELETE("", h.Delete)
}

// notePayload is a note mutation as the client sends it: the note plus the
// socket id of the originating connection, which must not receive the echo.
type notePayload struct {
	enotes.Note
	SocketID string `json:"socketid"`
}

func (h *NoteHandler) List(c *gin.Context) {
	username := currentUser(c)

	ns, pages, err := h.Service.List(username)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":       username,
		"notes":          ns,
		"pages":          pages,
		"successful":     true,
		"sessionExpired": false,
	})
}

func (h *NoteHandler) Create(c *gin.Context) {
	var payload notePayload
	if err := c.BindJSON(&payload); err != nil {
		abortWithError(c, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err)))
		return
	}

	if _, err := h.Service.CreateNote(currentUser(c), payload.SocketID, &payload.Note); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c)
}

func (h *NoteHandler) Update(c *gin.Context) {
	var payload notePayload
	if err := c.BindJSON(&payload); err != nil {
		abortWithError(c, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err)))
		return
	}

	if _, err := h.Service.UpdateNote(currentUser(c), payload.SocketID, &payload.Note); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c)
}

func (h *NoteHandler) Delete(c *gin.Context) {
	var payload struct {
		ID       string `json:"id"`
		SocketID string `json:"socketid"`
	}
	if err := c.BindJSON(&payload); err != nil {
		abortWithError(c, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err)))
		return
	}

	if err := h.Service.DeleteNote(currentUser(c), payload.SocketID, payload.ID); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c)
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"successful":     true,
		"sessionExpired": false,
	})
}

func abortWithError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	if err, ok := err.(errors.Error); ok {
		code = err.Code()
	}

	if code == errors.CodeSessionExpired {
		sessionExpired(c)
		return
	}

	c.JSON(code, gin.H{
		"successful":     false,
		"sessionExpired": false,
		"message":        err.Error(),
	})
}
