package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DBall8/enotes"
	"github.com/DBall8/enotes/errors"
	"github.com/DBall8/enotes/notes"
)

// NotePageHandler serves the /notepage routes.
type NotePageHandler struct {
	Service *notes.Service
}

func (h *NotePageHandler) RegisterRoutes(router *gin.Engine, authenticator *Authenticator) {
	pages := router.Group("/notepage", authenticator.RequireLogin)
	pages.POST("", h.Create)
	pages.PUT("", h.Update)
	pages.DELETE("", h.Delete)
}

type pagePayload struct {
	enotes.NotePage
	SocketID string `json:"socketid"`
}

func (h *NotePageHandler) Create(c *gin.Context) {
	var payload pagePayload
	if err := c.BindJSON(&payload); err != nil {
		abortWithError(c, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err)))
		return
	}

	if _, err := h.Service.CreatePage(currentUser(c), payload.SocketID, &payload.NotePage); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c)
}

func (h *NotePageHandler) Update(c *gin.Context) {
	var payload pagePayload
	if err := c.BindJSON(&payload); err != nil {
		abortWithError(c, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err)))
		return
	}

	if _, err := h.Service.UpdatePage(currentUser(c), payload.SocketID, &payload.NotePage); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c)
}

func (h *NotePageHandler) Delete(c *gin.Context) {
	var payload struct {
		ID       string `json:"id"`
		SocketID string `json:"socketid"`
	}
	if err := c.BindJSON(&payload); err != nil {
		abortWithError(c, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err)))
		return
	}

	recreated, err := h.Service.DeletePage(currentUser(c), payload.SocketID, payload.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// The origin learns about the recreated default page in the ack; its
	// siblings hear a createpage event instead.
	c.JSON(http.StatusOK, gin.H{
		"successful":     true,
		"sessionExpired": false,
		"recreatedPage":  recreated,
	})
}
