package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DBall8/enotes/auth"
	"github.com/DBall8/enotes/log"
	"github.com/DBall8/enotes/notes"
	"github.com/DBall8/enotes/presence"
	"github.com/DBall8/enotes/websocket"
)

func New(
	service *notes.Service,
	users *auth.UserService,
	encoder auth.EncodeDecoder,
	registry *presence.Registry,
	logger log.Logger,
) (http.Handler, error) {
	router := gin.Default()

	// CORS
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept-Language, Authorization, Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
		}
		c.Next()
	})

	// Unknown route
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	// Ping
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{"data": "ok"})
	})

	authenticator := &Authenticator{Decoder: encoder}

	// Notes and pages
	noteHandler := NoteHandler{Service: service}
	noteHandler.RegisterRoutes(router, authenticator)
	pageHandler := NotePageHandler{Service: service}
	pageHandler.RegisterRoutes(router, authenticator)

	// Auth
	authHandler := AuthHandler{Users: users, Encoder: encoder}
	authHandler.RegisterRoutes(router, authenticator)

	// Socket endpoint for the live fan-out
	wsHandler := websocket.NewHandler(registry, logger)
	router.GET("/socket", gin.WrapH(wsHandler))

	return router, nil
}
