package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard/board"
)

func getSummary(hub *board.Hub, authn Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newRequestMetrics(logger, "/api/summary")
		defer func() { metrics.Log(c.Response().Status, err) }()

		err = withSession(hub, authn, c, func(sess *board.Session) error {
			opStart := time.Now()
			sum := sess.Summarize()
			metrics.ObserveOp(time.Since(opStart))
			return c.JSON(http.StatusOK, sum)
		})
		return err
	}
}
