package api

import (
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard/board"
	"taskboard/domain"
)

const postBodyMaxSize = 1 << 20

type fieldErrorsResponse struct {
	Errors []domain.FieldError `json:"errors"`
}

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, postBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// withSession authenticates the request, acquires the user's session for
// the duration of fn and releases it afterwards.
func withSession(hub *board.Hub, authn Authenticator, c echo.Context, fn func(sess *board.Session) error) error {
	user, err := authn.UserFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return c.String(http.StatusUnauthorized, err.Error())
	}
	sess, err := hub.Acquire(c.Request().Context(), user)
	if err != nil {
		c.Logger().Error(err)
		return c.String(http.StatusInternalServerError, err.Error())
	}
	defer hub.Release(user.ID)
	return fn(sess)
}

func postTask(hub *board.Hub, authn Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newRequestMetrics(logger, "/api/tasks")
		defer func() { metrics.Log(c.Response().Status, err) }()

		err = withSession(hub, authn, c, func(sess *board.Session) error {
			var form domain.TaskForm
			if err := decodeBody(c, &form); err != nil {
				metrics.SetErrorStage("decode_body")
				return c.String(http.StatusBadRequest, "invalid body")
			}
			opStart := time.Now()
			fieldErrs, opErr := sess.CreateTask(c.Request().Context(), form)
			metrics.ObserveOp(time.Since(opStart))
			if opErr != nil {
				metrics.SetErrorStage("store")
				return c.String(http.StatusInternalServerError, opErr.Error())
			}
			if len(fieldErrs) > 0 {
				metrics.SetErrorStage("validation")
				return c.JSON(http.StatusBadRequest, fieldErrorsResponse{Errors: fieldErrs})
			}
			return c.NoContent(http.StatusCreated)
		})
		return err
	}
}

func patchTask(hub *board.Hub, authn Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return withSession(hub, authn, c, func(sess *board.Session) error {
			var form domain.TaskForm
			if err := decodeBody(c, &form); err != nil {
				return c.String(http.StatusBadRequest, "invalid body")
			}
			fieldErrs, err := sess.SaveTask(c.Request().Context(), c.Param("id"), form)
			if err != nil {
				return c.String(http.StatusInternalServerError, err.Error())
			}
			if len(fieldErrs) > 0 {
				return c.JSON(http.StatusBadRequest, fieldErrorsResponse{Errors: fieldErrs})
			}
			return c.NoContent(http.StatusOK)
		})
	}
}

func patchTaskStatus(hub *board.Hub, authn Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return withSession(hub, authn, c, func(sess *board.Session) error {
			var body struct {
				Status string `json:"status"`
			}
			if err := decodeBody(c, &body); err != nil {
				return c.String(http.StatusBadRequest, "invalid body")
			}
			if err := sess.MoveTask(c.Request().Context(), c.Param("id"), body.Status); err != nil {
				return c.String(http.StatusInternalServerError, err.Error())
			}
			return c.NoContent(http.StatusOK)
		})
	}
}

func toggleSubtask(hub *board.Hub, authn Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return withSession(hub, authn, c, func(sess *board.Session) error {
			if err := sess.ToggleSubtask(c.Request().Context(), c.Param("id"), c.Param("sid")); err != nil {
				return c.String(http.StatusInternalServerError, err.Error())
			}
			return c.NoContent(http.StatusOK)
		})
	}
}

func deleteTask(hub *board.Hub, authn Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return withSession(hub, authn, c, func(sess *board.Session) error {
			if err := sess.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
				return c.String(http.StatusInternalServerError, err.Error())
			}
			return c.NoContent(http.StatusOK)
		})
	}
}

func toggleSelection(hub *board.Hub, authn Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return withSession(hub, authn, c, func(sess *board.Session) error {
			var body struct {
				ID string `json:"id"`
			}
			if err := decodeBody(c, &body); err != nil || body.ID == "" {
				return c.String(http.StatusBadRequest, "invalid body")
			}
			sess.Selection().Toggle(body.ID)
			return c.NoContent(http.StatusOK)
		})
	}
}

func resetSelection(hub *board.Hub, authn Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return withSession(hub, authn, c, func(sess *board.Session) error {
			sess.Selection().Reset()
			return c.NoContent(http.StatusOK)
		})
	}
}
