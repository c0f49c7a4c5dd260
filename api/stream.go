package api

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard/board"
	"taskboard/notify"
	"taskboard/view"
)

// streamPayload is one SSE frame: the rendered view plus the currently
// visible notices.
type streamPayload struct {
	View    string          `json:"view"`
	Body    view.Node       `json:"body"`
	Picker  *view.Node      `json:"picker,omitempty"`
	Notices []notify.Notice `json:"notices"`
}

// stream serves the live view over SSE: an immediate frame on connect,
// then a re-rendered frame after every change signal.
func stream(hub *board.Hub, authn Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if token := c.QueryParam("token"); authHeader == "" && token != "" {
			authHeader = "Bearer " + token
		}
		user, err := authn.UserFromAuthHeader(authHeader)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		viewName := c.QueryParam("view")
		if viewName == "" {
			viewName = "board"
		}
		search := c.QueryParam("search")

		ctx := c.Request().Context()
		sess, err := hub.Acquire(ctx, user)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		defer hub.Release(user.ID)

		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}

		ch := sess.SubscribeUpdates()
		defer sess.UnsubscribeUpdates(ch)
		for {
			payload := renderFrame(ctx, sess, viewName, search)
			data, err := sonic.Marshal(payload)
			if err != nil {
				c.Logger().Error(err)
				return err
			}
			if _, err := c.Response().Write([]byte("data: ")); err != nil {
				return err
			}
			if _, err := c.Response().Write(data); err != nil {
				return err
			}
			if _, err := c.Response().Write([]byte("\n\n")); err != nil {
				return err
			}
			flusher.Flush()
			select {
			case <-ctx.Done():
				return nil
			case <-ch:
				continue
			}
		}
	}
}

func renderFrame(ctx context.Context, sess *board.Session, viewName, search string) streamPayload {
	payload := streamPayload{View: viewName, Notices: sess.Notices().Active()}
	if payload.Notices == nil {
		payload.Notices = []notify.Notice{}
	}
	switch viewName {
	case "contacts":
		payload.Body = sess.RenderContacts()
	default:
		payload.View = "board"
		payload.Body = sess.RenderBoard(ctx, search)
		picker := sess.RenderAssignPicker()
		payload.Picker = &picker
	}
	return payload
}
