package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/service"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// ok writes a success envelope with the given payload fields.
func ok(c echo.Context, payload echo.Map) error {
	if payload == nil {
		payload = echo.Map{}
	}
	payload["success"] = true
	return c.JSON(http.StatusOK, payload)
}

// failMsg writes a business failure. The status stays 200; the outcome is
// carried in the body.
func failMsg(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, echo.Map{"success": false, "message": msg})
}

// fail renders err. Business errors keep their message, anything else is
// logged and replaced by generic.
func fail(c echo.Context, err error, generic string) error {
	if msg, ok := service.Message(err); ok {
		return failMsg(c, msg)
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return failMsg(c, generic)
}

const invalidBody = "invalid request body"

func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
