package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard/board"
	"taskboard/domain"
)

func postContact(hub *board.Hub, authn Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return withSession(hub, authn, c, func(sess *board.Session) error {
			var form domain.ContactForm
			if err := decodeBody(c, &form); err != nil {
				return c.String(http.StatusBadRequest, "invalid body")
			}
			fieldErrs, err := sess.CreateContact(c.Request().Context(), form)
			if err != nil {
				return c.String(http.StatusInternalServerError, err.Error())
			}
			if len(fieldErrs) > 0 {
				return c.JSON(http.StatusBadRequest, fieldErrorsResponse{Errors: fieldErrs})
			}
			return c.NoContent(http.StatusCreated)
		})
	}
}

func patchContact(hub *board.Hub, authn Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return withSession(hub, authn, c, func(sess *board.Session) error {
			var form domain.ContactForm
			if err := decodeBody(c, &form); err != nil {
				return c.String(http.StatusBadRequest, "invalid body")
			}
			fieldErrs, err := sess.SaveContact(c.Request().Context(), c.Param("id"), form)
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

func deleteContact(hub *board.Hub, authn Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return withSession(hub, authn, c, func(sess *board.Session) error {
			if err := sess.DeleteContact(c.Request().Context(), c.Param("id")); err != nil {
				return c.String(http.StatusInternalServerError, err.Error())
			}
			return c.NoContent(http.StatusOK)
		})
	}
}
