package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard/auth"
	"taskboard/board"
)

// Authenticator is implemented by types able to extract identities from
// Authorization headers.
type Authenticator interface {
	UserFromAuthHeader(string) (auth.User, error)
}

// Register wires up all routes on the provided Echo instance.
func Register(e *echo.Echo, hub *board.Hub, authn Authenticator, logger *log.Logger) {
	e.GET("/stream", stream(hub, authn, logger))

	e.POST("/api/tasks", postTask(hub, authn, logger))
	e.PATCH("/api/tasks/:id", patchTask(hub, authn))
	e.PATCH("/api/tasks/:id/status", patchTaskStatus(hub, authn))
	e.POST("/api/tasks/:id/subtasks/:sid/toggle", toggleSubtask(hub, authn))
	e.DELETE("/api/tasks/:id", deleteTask(hub, authn))

	e.POST("/api/contacts", postContact(hub, authn))
	e.PATCH("/api/contacts/:id", patchContact(hub, authn))
	e.DELETE("/api/contacts/:id", deleteContact(hub, authn))

	e.POST("/api/selection/toggle", toggleSelection(hub, authn))
	e.POST("/api/selection/reset", resetSelection(hub, authn))

	e.GET("/api/summary", getSummary(hub, authn, logger))
	e.GET("/api/login-message", loginMessage())
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// loginMessage maps an identity provider error code to the fixed user-facing
// sign-in message the login page shows.
func loginMessage() echo.HandlerFunc {
	return func(c echo.Context) error {
		code := c.QueryParam("code")
		return c.JSON(http.StatusOK, map[string]string{"message": auth.Message(code)})
	}
}
