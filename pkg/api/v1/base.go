package apiv1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/drivebay/drivebay/pkg/types"
)

const (
	HttpServerBaseRoute string = "/api/v1"
)

// success writes the JSON envelope the UI layer consumes: the payload plus
// a success flag.
func success(ctx echo.Context, payload map[string]any) error {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return ctx.JSON(http.StatusOK, body)
}

// errorResponse maps a typed core error onto an HTTP status and the
// {success, error} envelope. Status mapping lives here and only here; the
// core surfaces error kinds, not wire formats.
func errorResponse(ctx echo.Context, err error) error {
	return ctx.JSON(statusForError(err), map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case matches[*types.ErrInvalidPath](err),
		matches[*types.ErrInvalidName](err),
		matches[*types.ErrInvalidFileType](err):
		return http.StatusBadRequest
	case matches[*types.ErrDeviceNotFound](err),
		matches[*types.ErrPathNotFound](err):
		return http.StatusNotFound
	case matches[*types.ErrAlreadyMounted](err),
		matches[*types.ErrNotMounted](err),
		matches[*types.ErrConflict](err),
		matches[*types.ErrDeviceBusy](err):
		return http.StatusConflict
	case matches[*types.ErrFileTooLarge](err):
		return http.StatusRequestEntityTooLarge
	case matches[*types.ErrPermissionDenied](err):
		return http.StatusForbidden
	case matches[*types.ErrDeviceLost](err):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func matches[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
