package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/NefariousNiru/papertrail-go/pkg/apperr"
)

// mapServiceError maps the apperr taxonomy to HTTP responses, grounded on
// teacher's pkg/api/errors.go.
func mapServiceError(err error) *echo.HTTPError {
	var validErr *apperr.ValidationError
	if errors.As(err, &validErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validErr.Error())
	}
	if errors.Is(err, apperr.ErrAuth) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or rejected API key")
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	if errors.Is(err, apperr.ErrUpstream) {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream provider request failed")
	}
	if errors.Is(err, apperr.ErrCorruptState) {
		slog.Error("corrupt stored state", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	slog.Error("unexpected service error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
